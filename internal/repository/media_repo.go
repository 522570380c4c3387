package repository

import (
	"context"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"gorm.io/gorm"
)

var errMediaNotFound = common.NewNotFoundError("media")

// MediaRepository upload metadata data access
type MediaRepository interface {
	Create(ctx context.Context, m *domain.Media) error
	FindByID(ctx context.Context, siteID, mediaID string) (*domain.Media, error)
	List(ctx context.Context, siteID string, limit, skip int) ([]*domain.Media, int64, error)
	Update(ctx context.Context, m *domain.Media) error
	Delete(ctx context.Context, siteID, mediaID string) error
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new MediaRepository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, m *domain.Media) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *mediaRepository) FindByID(ctx context.Context, siteID, mediaID string) (*domain.Media, error) {
	var m domain.Media
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND media_id = ?", siteID, mediaID).
		First(&m).Error
	if err != nil {
		return nil, translate(err, errMediaNotFound, "")
	}
	return &m, nil
}

func (r *mediaRepository) List(ctx context.Context, siteID string, limit, skip int) ([]*domain.Media, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Media{}).Where("site_id = ?", siteID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*domain.Media
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(skip).Find(&items).Error
	return items, total, err
}

func (r *mediaRepository) Update(ctx context.Context, m *domain.Media) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Media{}).
		Where("site_id = ? AND media_id = ?", m.SiteID, m.MediaID).
		Updates(map[string]interface{}{
			"filename":   m.Filename,
			"metadata":   m.Metadata,
			"updated_at": m.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errMediaNotFound
	}
	return nil
}

func (r *mediaRepository) Delete(ctx context.Context, siteID, mediaID string) error {
	res := r.db.WithContext(ctx).
		Where("site_id = ? AND media_id = ?", siteID, mediaID).
		Delete(&domain.Media{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errMediaNotFound
	}
	return nil
}
