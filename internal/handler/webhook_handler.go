package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/service"
)

// WebhookHandler manages outbound webhooks
type WebhookHandler struct {
	service service.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(service service.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// List handles GET /api/cms/:siteId/webhooks
// @Summary 웹훅 목록
// @Tags webhooks
// @Produce json
// @Param siteId path string true "site id"
// @Success 200 {object} common.Response{data=[]domain.Webhook}
// @Router /cms/{siteId}/webhooks [get]
func (h *WebhookHandler) List(c *gin.Context) {
	hooks, err := h.service.List(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, hooks)
}

// Create handles POST /api/cms/:siteId/webhooks
// @Summary 웹훅 등록
// @Tags webhooks
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param request body domain.WebhookRequest true "webhook"
// @Success 201 {object} common.Response{data=domain.Webhook}
// @Router /cms/{siteId}/webhooks [post]
func (h *WebhookHandler) Create(c *gin.Context) {
	var req domain.WebhookRequest
	if !bindJSON(c, &req) {
		return
	}

	hook, err := h.service.Create(c.Request.Context(), c.Param("siteId"), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, hook)
}

// Update handles PUT /api/cms/:siteId/webhooks/:webhookId
// 빈 secret 은 기존 값을 유지
// @Summary 웹훅 수정
// @Tags webhooks
// @Accept json
// @Produce json
// @Param siteId path string true "site id"
// @Param webhookId path string true "webhook id"
// @Param request body domain.WebhookRequest true "webhook"
// @Success 200 {object} common.Response{data=domain.Webhook}
// @Router /cms/{siteId}/webhooks/{webhookId} [put]
func (h *WebhookHandler) Update(c *gin.Context) {
	var req domain.WebhookRequest
	if !bindJSON(c, &req) {
		return
	}

	hook, err := h.service.Update(c.Request.Context(), c.Param("siteId"), c.Param("webhookId"), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Success(c, hook)
}

// Delete handles DELETE /api/cms/:siteId/webhooks/:webhookId
// @Summary 웹훅 삭제
// @Tags webhooks
// @Produce json
// @Param siteId path string true "site id"
// @Param webhookId path string true "webhook id"
// @Success 200 {object} common.Response
// @Router /cms/{siteId}/webhooks/{webhookId} [delete]
func (h *WebhookHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("siteId"), c.Param("webhookId")); err != nil {
		common.Fail(c, err)
		return
	}
	common.SuccessWithMessage(c, nil, "webhook deleted")
}
