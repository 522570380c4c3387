package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/service"
)

// FormSubmissionHandler handles lead capture and lead management
type FormSubmissionHandler struct {
	service service.FormSubmissionService
}

// NewFormSubmissionHandler creates a new FormSubmissionHandler
func NewFormSubmissionHandler(service service.FormSubmissionService) *FormSubmissionHandler {
	return &FormSubmissionHandler{service: service}
}

// Create handles POST /api/cms/:siteId/form-submissions (public)
// @Summary 폼 제출
// @Tags form-submissions
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param request body domain.CreateFormSubmissionRequest true "form data"
// @Success 201 {object} common.Response{data=domain.FormSubmission}
// @Failure 429 {object} common.Response
// @Router /cms/{siteId}/form-submissions [post]
func (h *FormSubmissionHandler) Create(c *gin.Context) {
	var req domain.CreateFormSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}

	sub, err := h.service.Create(c.Request.Context(), c.Param("siteId"), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, sub)
}

// List handles GET /api/cms/:siteId/form-submissions
// @Summary 폼 제출 목록
// @Tags form-submissions
// @Produce json
// @Param siteId path string true "site id"
// @Param status query string false "new | contacted | qualified | converted | lost"
// @Param limit query int false "page size" default(20)
// @Param skip query int false "offset"
// @Success 200 {object} common.Response{data=[]domain.FormSubmission}
// @Router /cms/{siteId}/form-submissions [get]
func (h *FormSubmissionHandler) List(c *gin.Context) {
	limit, skip := pagination(c)
	items, meta, err := h.service.List(c.Request.Context(), c.Param("siteId"), domain.SubmissionStatus(c.Query("status")), limit, skip)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.SuccessWithMeta(c, items, meta)
}

// Get handles GET /api/cms/:siteId/form-submissions/:id
// @Summary 폼 제출 조회
// @Tags form-submissions
// @Produce json
// @Param siteId path string true "site id"
// @Param id path string true "submission id"
// @Success 200 {object} common.Response{data=domain.FormSubmission}
// @Router /cms/{siteId}/form-submissions/{id} [get]
func (h *FormSubmissionHandler) Get(c *gin.Context) {
	sub, err := h.service.Get(c.Request.Context(), c.Param("siteId"), c.Param("id"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, sub)
}

// UpdateStatus handles PATCH /api/cms/:siteId/form-submissions/:id/status
// @Summary 폼 제출 상태 변경
// @Tags form-submissions
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param id path string true "submission id"
// @Param request body domain.UpdateSubmissionStatusRequest true "status"
// @Success 200 {object} common.Response{data=domain.FormSubmission}
// @Router /cms/{siteId}/form-submissions/{id}/status [patch]
func (h *FormSubmissionHandler) UpdateStatus(c *gin.Context) {
	var req domain.UpdateSubmissionStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	sub, err := h.service.UpdateStatus(c.Request.Context(), c.Param("siteId"), c.Param("id"), req.Status)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, sub)
}

// BulkUpdateStatus handles POST /api/cms/:siteId/form-submissions/bulk-status
// @Summary 폼 제출 상태 일괄 변경
// @Tags form-submissions
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param request body domain.BulkSubmissionStatusRequest true "ids and status"
// @Success 200 {object} common.Response
// @Router /cms/{siteId}/form-submissions/bulk-status [post]
func (h *FormSubmissionHandler) BulkUpdateStatus(c *gin.Context) {
	var req domain.BulkSubmissionStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.service.BulkUpdateStatus(c.Request.Context(), c.Param("siteId"), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, gin.H{"updated": updated})
}

// Delete handles DELETE /api/cms/:siteId/form-submissions/:id
// @Summary 폼 제출 삭제
// @Tags form-submissions
// @Produce json
// @Param siteId path string true "site id"
// @Param id path string true "submission id"
// @Success 200 {object} common.Response
// @Router /cms/{siteId}/form-submissions/{id} [delete]
func (h *FormSubmissionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("siteId"), c.Param("id")); err != nil {
		common.Fail(c, err)
		return
	}
	common.SuccessWithMessage(c, nil, "submission deleted")
}
