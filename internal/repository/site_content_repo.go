package repository

import (
	"context"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errSiteContentNotFound = common.NewNotFoundError("site content")

// SiteContentRepository per-site singleton data access
type SiteContentRepository interface {
	FindBySite(ctx context.Context, siteID string) (*domain.SiteContent, error)
	Upsert(ctx context.Context, sc *domain.SiteContent) error
}

type siteContentRepository struct {
	db *gorm.DB
}

// NewSiteContentRepository creates a new SiteContentRepository
func NewSiteContentRepository(db *gorm.DB) SiteContentRepository {
	return &siteContentRepository{db: db}
}

func (r *siteContentRepository) FindBySite(ctx context.Context, siteID string) (*domain.SiteContent, error) {
	var sc domain.SiteContent
	err := r.db.WithContext(ctx).Where("site_id = ?", siteID).First(&sc).Error
	if err != nil {
		return nil, translate(err, errSiteContentNotFound, "")
	}
	return &sc, nil
}

// Upsert INSERT ... ON DUPLICATE KEY UPDATE on site_id
func (r *siteContentRepository) Upsert(ctx context.Context, sc *domain.SiteContent) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "site_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "updated_by", "updated_at"}),
	}).Create(sc).Error
}
