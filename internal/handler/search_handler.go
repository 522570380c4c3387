package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/query"
	"github.com/damoang/angple-cms/internal/service"
)

// SearchHandler handles published content search
type SearchHandler struct {
	service *service.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(service *service.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search handles GET /api/cms/:siteId/search
// @Summary 콘텐츠 검색
// @Tags search
// @Produce json
// @Param siteId path string true "site id"
// @Param q query string true "keyword"
// @Param limit query int false "page size" default(20)
// @Param skip query int false "offset"
// @Success 200 {object} common.Response{data=[]service.SearchHit}
// @Failure 400 {object} common.Response
// @Router /cms/{siteId}/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	limit, skip := pagination(c)
	limit, skip = query.ClampLimit(limit), query.ClampSkip(skip)

	hits, total, err := h.service.Search(c.Request.Context(), c.Param("siteId"), c.Query("q"), limit, skip)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.SuccessWithMeta(c, hits, common.NewListMeta(limit, skip, total))
}
