package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/middleware"
	"github.com/damoang/angple-cms/internal/query"
	"github.com/damoang/angple-cms/internal/service"
	"github.com/damoang/angple-cms/pkg/ginutil"
)

// ContentHandler handles content document requests
type ContentHandler struct {
	service service.ContentService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(service service.ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

// UpdatedContent is an updated document plus the keys that changed
type UpdatedContent struct {
	*domain.Content
	ChangedFields []string `json:"changedFields"`
}

// audience widens visibility for editors signed in to the requested site
func audience(c *gin.Context) query.Audience {
	if middleware.IsSiteEditor(c) {
		return query.AudienceAdmin
	}
	return query.AudiencePublic
}

// List handles GET /api/cms/:siteId/content/:contentTypeId
// @Summary 콘텐츠 목록
// @Description 비로그인 요청은 published 만 조회. field.<fieldId>=value 로 데이터 필터.
// @Tags content
// @Produce json
// @Param siteId path string true "site id"
// @Param contentTypeId path string true "content type id"
// @Param status query string false "draft | published | archived (editors only)"
// @Param search query string false "title search"
// @Param limit query int false "page size" default(20)
// @Param skip query int false "offset"
// @Success 200 {object} common.Response{data=[]domain.Content}
// @Router /cms/{siteId}/content/{contentTypeId} [get]
func (h *ContentHandler) List(c *gin.Context) {
	limit, skip := pagination(c)
	f := query.Filters{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Fields: fieldFilters(c),
		Limit:  limit,
		Skip:   skip,
	}

	list, err := h.service.List(c.Request.Context(), c.Param("siteId"), c.Param("contentTypeId"), audience(c), f)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.SuccessWithMeta(c, list.Items, common.NewListMeta(list.Limit, list.Skip, list.Total))
}

// Get handles GET /api/cms/:siteId/content/:contentTypeId/:contentId
// @Summary 콘텐츠 조회 (id 또는 slug)
// @Tags content
// @Produce json
// @Param siteId path string true "site id"
// @Param contentTypeId path string true "content type id"
// @Param contentId path string true "content id or slug"
// @Success 200 {object} common.Response{data=domain.Content}
// @Failure 404 {object} common.Response
// @Router /cms/{siteId}/content/{contentTypeId}/{contentId} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	content, err := h.service.Get(c.Request.Context(), c.Param("siteId"), c.Param("contentTypeId"), c.Param("contentId"), audience(c))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, content)
}

// Create handles POST /api/cms/:siteId/content/:contentTypeId
// @Summary 콘텐츠 생성
// @Tags content
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param contentTypeId path string true "content type id"
// @Param request body domain.CreateContentRequest true "document"
// @Success 201 {object} common.Response{data=domain.Content}
// @Failure 400 {object} common.Response
// @Router /cms/{siteId}/content/{contentTypeId} [post]
func (h *ContentHandler) Create(c *gin.Context) {
	var req domain.CreateContentRequest
	if !bindJSON(c, &req) {
		return
	}

	content, err := h.service.Create(c.Request.Context(), c.Param("siteId"), c.Param("contentTypeId"), &req, actor(c))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, content)
}

// Update handles PUT /api/cms/:siteId/content/:contentTypeId/:contentId
// @Summary 콘텐츠 수정
// @Description version 을 보내면 낙관적 잠금 (불일치 시 409)
// @Tags content
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param contentTypeId path string true "content type id"
// @Param contentId path string true "content id"
// @Param request body domain.UpdateContentRequest true "changes"
// @Success 200 {object} common.Response{data=UpdatedContent}
// @Failure 409 {object} common.Response
// @Router /cms/{siteId}/content/{contentTypeId}/{contentId} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	var req domain.UpdateContentRequest
	if !bindJSON(c, &req) {
		return
	}

	content, changed, err := h.service.Update(c.Request.Context(), c.Param("siteId"), c.Param("contentTypeId"), c.Param("contentId"), &req, actor(c))
	if err != nil {
		common.Fail(c, err)
		return
	}
	if changed == nil {
		changed = []string{}
	}
	common.Success(c, UpdatedContent{Content: content, ChangedFields: changed})
}

// Delete handles DELETE /api/cms/:siteId/content/:contentTypeId/:contentId
// 기본은 archived 로 전환, ?hard=true 는 관리자만
// @Summary 콘텐츠 삭제
// @Tags content
// @Produce json
// @Param siteId path string true "site id"
// @Param contentTypeId path string true "content type id"
// @Param contentId path string true "content id"
// @Param hard query bool false "permanently delete (admin)"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.Response
// @Router /cms/{siteId}/content/{contentTypeId}/{contentId} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	hard := ginutil.QueryBool(c, "hard")
	if hard && middleware.GetRole(c) != string(domain.RoleAdmin) {
		common.Fail(c, common.ErrAdminRequired)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("siteId"), c.Param("contentTypeId"), c.Param("contentId"), hard, actor(c)); err != nil {
		common.Fail(c, err)
		return
	}

	msg := "content archived"
	if hard {
		msg = "content deleted"
	}
	common.SuccessWithMessage(c, nil, msg)
}

// Revisions handles GET /api/cms/:siteId/content/:contentTypeId/:contentId/revisions
// @Summary 리비전 목록 (최신순)
// @Tags content
// @Produce json
// @Param siteId path string true "site id"
// @Param contentTypeId path string true "content type id"
// @Param contentId path string true "content id"
// @Success 200 {object} common.Response{data=[]domain.Revision}
// @Router /cms/{siteId}/content/{contentTypeId}/{contentId}/revisions [get]
func (h *ContentHandler) Revisions(c *gin.Context) {
	revs, err := h.service.Revisions(c.Request.Context(), c.Param("siteId"), c.Param("contentTypeId"), c.Param("contentId"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, revs)
}

// Restore handles POST /api/cms/:siteId/content/:contentTypeId/:contentId/revisions/:version/restore
// @Summary 리비전 복원
// @Tags content
// @Produce json
// @Param siteId path string true "site id"
// @Param contentTypeId path string true "content type id"
// @Param contentId path string true "content id"
// @Param version path int true "revision version"
// @Success 200 {object} common.Response{data=domain.Content}
// @Failure 404 {object} common.Response
// @Router /cms/{siteId}/content/{contentTypeId}/{contentId}/revisions/{version}/restore [post]
func (h *ContentHandler) Restore(c *gin.Context) {
	version, err := ginutil.ParamInt(c, "version")
	if err != nil || version < 1 {
		common.Fail(c, common.NewValidationError("invalid version", map[string]string{"version": c.Param("version")}))
		return
	}

	content, err := h.service.Restore(c.Request.Context(), c.Param("siteId"), c.Param("contentTypeId"), c.Param("contentId"), version, actor(c))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, content)
}
