package repository

import (
	"context"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"gorm.io/gorm"
)

// ContentTypeRepository content type schema data access
type ContentTypeRepository interface {
	Create(ctx context.Context, ct *domain.ContentType) error
	Update(ctx context.Context, ct *domain.ContentType) error
	Delete(ctx context.Context, siteID, contentTypeID string) error
	FindByID(ctx context.Context, siteID, contentTypeID string) (*domain.ContentType, error)
	List(ctx context.Context, siteID string) ([]*domain.ContentType, error)
}

type contentTypeRepository struct {
	db *gorm.DB
}

// NewContentTypeRepository creates a new ContentTypeRepository
func NewContentTypeRepository(db *gorm.DB) ContentTypeRepository {
	return &contentTypeRepository{db: db}
}

func (r *contentTypeRepository) Create(ctx context.Context, ct *domain.ContentType) error {
	err := r.db.WithContext(ctx).Create(ct).Error
	return translate(err, common.ErrContentTypeNotFound, "content type already exists")
}

func (r *contentTypeRepository) Update(ctx context.Context, ct *domain.ContentType) error {
	res := r.db.WithContext(ctx).
		Model(&domain.ContentType{}).
		Where("site_id = ? AND content_type_id = ?", ct.SiteID, ct.ContentTypeID).
		Updates(map[string]interface{}{
			"name":        ct.Name,
			"description": ct.Description,
			"fields":      ct.Fields,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrContentTypeNotFound
	}
	return nil
}

func (r *contentTypeRepository) Delete(ctx context.Context, siteID, contentTypeID string) error {
	res := r.db.WithContext(ctx).
		Where("site_id = ? AND content_type_id = ?", siteID, contentTypeID).
		Delete(&domain.ContentType{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrContentTypeNotFound
	}
	return nil
}

func (r *contentTypeRepository) FindByID(ctx context.Context, siteID, contentTypeID string) (*domain.ContentType, error) {
	var ct domain.ContentType
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND content_type_id = ?", siteID, contentTypeID).
		First(&ct).Error
	if err != nil {
		return nil, translate(err, common.ErrContentTypeNotFound, "")
	}
	return &ct, nil
}

func (r *contentTypeRepository) List(ctx context.Context, siteID string) ([]*domain.ContentType, error) {
	var types []*domain.ContentType
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("is_system DESC, name ASC").
		Find(&types).Error
	return types, err
}
