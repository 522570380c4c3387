package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/service"
)

// SiteContentHandler serves the per-site text configuration
type SiteContentHandler struct {
	service service.SiteContentService
}

// NewSiteContentHandler creates a new SiteContentHandler
func NewSiteContentHandler(service service.SiteContentService) *SiteContentHandler {
	return &SiteContentHandler{service: service}
}

// Get handles GET /api/cms/:siteId/site-content (public)
// @Summary 사이트 콘텐츠 조회
// @Tags site-content
// @Produce json
// @Param siteId path string true "site id"
// @Success 200 {object} common.Response{data=domain.SiteContent}
// @Router /cms/{siteId}/site-content [get]
func (h *SiteContentHandler) Get(c *gin.Context) {
	sc, err := h.service.Get(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, sc)
}

// Upsert handles PUT /api/cms/:siteId/site-content
// @Summary 사이트 콘텐츠 저장
// @Tags site-content
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param request body domain.UpsertSiteContentRequest true "fields"
// @Success 200 {object} common.Response{data=domain.SiteContent}
// @Router /cms/{siteId}/site-content [put]
func (h *SiteContentHandler) Upsert(c *gin.Context) {
	var req domain.UpsertSiteContentRequest
	if !bindJSON(c, &req) {
		return
	}

	sc, err := h.service.Upsert(c.Request.Context(), c.Param("siteId"), &req, actor(c))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, sc)
}
