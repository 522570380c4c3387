package repository

import (
	"context"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"gorm.io/gorm"
)

// RevisionRepository content revision history (append-only)
type RevisionRepository interface {
	ListByContent(ctx context.Context, siteID, contentID string) ([]*domain.Revision, error)
	FindByVersion(ctx context.Context, siteID, contentID string, version int) (*domain.Revision, error)
}

type revisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a new RevisionRepository
func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) ListByContent(ctx context.Context, siteID, contentID string) ([]*domain.Revision, error) {
	var revisions []*domain.Revision
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND content_id = ?", siteID, contentID).
		Order("version DESC").
		Find(&revisions).Error
	return revisions, err
}

func (r *revisionRepository) FindByVersion(ctx context.Context, siteID, contentID string, version int) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND content_id = ? AND version = ?", siteID, contentID, version).
		First(&revision).Error
	if err != nil {
		return nil, translate(err, common.ErrRevisionNotFound, "")
	}
	return &revision, nil
}
