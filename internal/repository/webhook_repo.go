package repository

import (
	"context"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"gorm.io/gorm"
)

var errWebhookNotFound = common.NewNotFoundError("webhook")

// WebhookRepository outbound webhook data access
type WebhookRepository interface {
	Create(ctx context.Context, w *domain.Webhook) error
	Update(ctx context.Context, w *domain.Webhook) error
	Delete(ctx context.Context, siteID, webhookID string) error
	FindByID(ctx context.Context, siteID, webhookID string) (*domain.Webhook, error)
	List(ctx context.Context, siteID string) ([]*domain.Webhook, error)
	ListActive(ctx context.Context, siteID string) ([]*domain.Webhook, error)
}

type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new WebhookRepository
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

func (r *webhookRepository) Create(ctx context.Context, w *domain.Webhook) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *webhookRepository) Update(ctx context.Context, w *domain.Webhook) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Webhook{}).
		Where("site_id = ? AND webhook_id = ?", w.SiteID, w.WebhookID).
		Updates(map[string]interface{}{
			"url":            w.URL,
			"secret":         w.Secret,
			"events":         w.Events,
			"tracked_fields": w.TrackedFields,
			"active":         w.Active,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errWebhookNotFound
	}
	return nil
}

func (r *webhookRepository) Delete(ctx context.Context, siteID, webhookID string) error {
	res := r.db.WithContext(ctx).
		Where("site_id = ? AND webhook_id = ?", siteID, webhookID).
		Delete(&domain.Webhook{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errWebhookNotFound
	}
	return nil
}

func (r *webhookRepository) FindByID(ctx context.Context, siteID, webhookID string) (*domain.Webhook, error) {
	var w domain.Webhook
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND webhook_id = ?", siteID, webhookID).
		First(&w).Error
	if err != nil {
		return nil, translate(err, errWebhookNotFound, "")
	}
	return &w, nil
}

func (r *webhookRepository) List(ctx context.Context, siteID string) ([]*domain.Webhook, error) {
	var hooks []*domain.Webhook
	err := r.db.WithContext(ctx).Where("site_id = ?", siteID).Order("created_at ASC").Find(&hooks).Error
	return hooks, err
}

func (r *webhookRepository) ListActive(ctx context.Context, siteID string) ([]*domain.Webhook, error) {
	var hooks []*domain.Webhook
	err := r.db.WithContext(ctx).Where("site_id = ? AND active = ?", siteID, true).Find(&hooks).Error
	return hooks, err
}
