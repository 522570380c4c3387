package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/service"
)

// ContentTypeHandler handles content type schema requests
type ContentTypeHandler struct {
	service service.ContentTypeService
}

// NewContentTypeHandler creates a new ContentTypeHandler
func NewContentTypeHandler(service service.ContentTypeService) *ContentTypeHandler {
	return &ContentTypeHandler{service: service}
}

// ValidatePayloadRequest wraps the data to check against a content type
type ValidatePayloadRequest struct {
	Data map[string]interface{} `json:"data" binding:"required"`
}

// List handles GET /api/cms/:siteId/content-types
// @Summary 콘텐츠 타입 목록
// @Tags content-types
// @Produce json
// @Param siteId path string true "site id"
// @Success 200 {object} common.Response{data=[]domain.ContentType}
// @Router /cms/{siteId}/content-types [get]
func (h *ContentTypeHandler) List(c *gin.Context) {
	types, err := h.service.List(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, types)
}

// Get handles GET /api/cms/:siteId/content-types/:contentTypeId
// @Summary 콘텐츠 타입 조회
// @Tags content-types
// @Produce json
// @Param siteId path string true "site id"
// @Param contentTypeId path string true "content type id"
// @Success 200 {object} common.Response{data=domain.ContentType}
// @Failure 404 {object} common.Response
// @Router /cms/{siteId}/content-types/{contentTypeId} [get]
func (h *ContentTypeHandler) Get(c *gin.Context) {
	ct, err := h.service.Get(c.Request.Context(), c.Param("siteId"), c.Param("contentTypeId"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, ct)
}

// Create handles POST /api/cms/:siteId/content-types
// @Summary 콘텐츠 타입 생성
// @Tags content-types
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param request body domain.CreateContentTypeRequest true "schema"
// @Success 201 {object} common.Response{data=domain.ContentType}
// @Failure 409 {object} common.Response
// @Router /cms/{siteId}/content-types [post]
func (h *ContentTypeHandler) Create(c *gin.Context) {
	var req domain.CreateContentTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	ct, err := h.service.Create(c.Request.Context(), c.Param("siteId"), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, ct)
}

// Update handles PUT /api/cms/:siteId/content-types/:contentTypeId
// @Summary 콘텐츠 타입 수정
// @Tags content-types
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param contentTypeId path string true "content type id"
// @Param request body domain.UpdateContentTypeRequest true "changes"
// @Success 200 {object} common.Response{data=domain.ContentType}
// @Router /cms/{siteId}/content-types/{contentTypeId} [put]
func (h *ContentTypeHandler) Update(c *gin.Context) {
	var req domain.UpdateContentTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	ct, err := h.service.Update(c.Request.Context(), c.Param("siteId"), c.Param("contentTypeId"), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, ct)
}

// Delete handles DELETE /api/cms/:siteId/content-types/:contentTypeId
// @Summary 콘텐츠 타입 삭제
// @Tags content-types
// @Produce json
// @Param siteId path string true "site id"
// @Param contentTypeId path string true "content type id"
// @Success 200 {object} common.Response
// @Failure 409 {object} common.Response
// @Router /cms/{siteId}/content-types/{contentTypeId} [delete]
func (h *ContentTypeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("siteId"), c.Param("contentTypeId")); err != nil {
		common.Fail(c, err)
		return
	}
	common.SuccessWithMessage(c, nil, "content type deleted")
}

// Validate handles POST /api/cms/:siteId/content-types/:contentTypeId/validate
// An invalid payload is still a 200; the result carries the field errors.
// @Summary 페이로드 검증
// @Tags content-types
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param contentTypeId path string true "content type id"
// @Param request body ValidatePayloadRequest true "payload"
// @Success 200 {object} common.Response{data=service.ValidationResult}
// @Router /cms/{siteId}/content-types/{contentTypeId}/validate [post]
func (h *ContentTypeHandler) Validate(c *gin.Context) {
	var req ValidatePayloadRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Validate(c.Request.Context(), c.Param("siteId"), c.Param("contentTypeId"), req.Data)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, result)
}
