package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/service"
)

// MediaHandler handles media upload requests
type MediaHandler struct {
	service *service.MediaService
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(service *service.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

// Upload handles POST /api/cms/:siteId/media
// @Summary 미디어 업로드
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param siteId path string true "site id"
// @Param file formData file true "file"
// @Success 201 {object} common.Response{data=domain.Media}
// @Failure 400 {object} common.Response
// @Router /cms/{siteId}/media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "file is required", nil)
		return
	}

	media, err := h.service.Upload(c.Request.Context(), c.Param("siteId"), file, actor(c))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, media)
}

// List handles GET /api/cms/:siteId/media
// @Summary 미디어 목록
// @Tags media
// @Produce json
// @Param siteId path string true "site id"
// @Param limit query int false "page size" default(20)
// @Param skip query int false "offset"
// @Success 200 {object} common.Response{data=[]domain.Media}
// @Router /cms/{siteId}/media [get]
func (h *MediaHandler) List(c *gin.Context) {
	limit, skip := pagination(c)
	items, meta, err := h.service.List(c.Request.Context(), c.Param("siteId"), limit, skip)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.SuccessWithMeta(c, items, meta)
}

// Get handles GET /api/cms/:siteId/media/:mediaId
// @Summary 미디어 조회
// @Tags media
// @Produce json
// @Param siteId path string true "site id"
// @Param mediaId path string true "media id"
// @Success 200 {object} common.Response{data=domain.Media}
// @Router /cms/{siteId}/media/{mediaId} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	media, err := h.service.Get(c.Request.Context(), c.Param("siteId"), c.Param("mediaId"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, media)
}

// Update handles PATCH /api/cms/:siteId/media/:mediaId
// @Summary 미디어 메타데이터 수정
// @Tags media
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param mediaId path string true "media id"
// @Param request body domain.UpdateMediaRequest true "metadata"
// @Success 200 {object} common.Response{data=domain.Media}
// @Router /cms/{siteId}/media/{mediaId} [patch]
func (h *MediaHandler) Update(c *gin.Context) {
	var req domain.UpdateMediaRequest
	if !bindJSON(c, &req) {
		return
	}

	media, err := h.service.Update(c.Request.Context(), c.Param("siteId"), c.Param("mediaId"), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, media)
}

// Delete handles DELETE /api/cms/:siteId/media/:mediaId
// @Summary 미디어 삭제
// @Tags media
// @Produce json
// @Param siteId path string true "site id"
// @Param mediaId path string true "media id"
// @Success 200 {object} common.Response
// @Router /cms/{siteId}/media/{mediaId} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("siteId"), c.Param("mediaId")); err != nil {
		common.Fail(c, err)
		return
	}
	common.SuccessWithMessage(c, nil, "media deleted")
}
