package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/query"
)

// ErrUnscopedQuery is returned for a query.Spec that did not come from query.Build
var ErrUnscopedQuery = errors.New("content query without site scope")

// columns a query.Spec may reference
var contentColumns = map[string]bool{
	query.FieldSiteID:        true,
	query.FieldContentTypeID: true,
	query.FieldStatus:        true,
	query.FieldTitle:         true,
	query.FieldCreatedAt:     true,
	query.FieldID:            true,
}

// case-insensitive substring predicates run against the Go-folded copy of a column
var foldedColumns = map[string]string{
	query.FieldTitle: "title_search",
}

// ContentRepository content document data access
type ContentRepository interface {
	Create(ctx context.Context, c *domain.Content) error
	// UpdateWithRevision stores rev and c atomically; c is only written while its stored version is prevVersion
	UpdateWithRevision(ctx context.Context, c *domain.Content, prevVersion int, rev *domain.Revision) error
	Delete(ctx context.Context, siteID, contentID string) error
	FindByID(ctx context.Context, siteID, contentTypeID, idOrSlug string) (*domain.Content, error)
	FindMany(ctx context.Context, spec query.Spec) ([]*domain.Content, int64, error)
	CountByType(ctx context.Context, siteID, contentTypeID string) (int64, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, c *domain.Content) error {
	c.TitleSearch = domain.FoldTitle(c.Title)
	err := r.db.WithContext(ctx).Create(c).Error
	return translate(err, common.ErrContentNotFound, "slug already exists for this content type")
}

func (r *contentRepository) UpdateWithRevision(ctx context.Context, c *domain.Content, prevVersion int, rev *domain.Revision) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rev != nil {
			if err := tx.Create(rev).Error; err != nil {
				if isDuplicateKey(err) {
					// another writer already snapshotted this version
					return common.ErrVersionConflict
				}
				return err
			}
		}

		res := tx.Model(&domain.Content{}).
			Where("site_id = ? AND content_id = ? AND version = ?", c.SiteID, c.ContentID, prevVersion).
			Updates(map[string]interface{}{
				"title":        c.Title,
				"title_search": domain.FoldTitle(c.Title),
				"slug":         c.Slug,
				"data":         c.Data,
				"status":       c.Status,
				"version":      c.Version,
				"published_at": c.PublishedAt,
				"updated_by":   c.UpdatedBy,
				"updated_at":   c.UpdatedAt,
			})
		if res.Error != nil {
			return translate(res.Error, common.ErrContentNotFound, "slug already exists for this content type")
		}
		if res.RowsAffected == 0 {
			return common.ErrVersionConflict
		}
		return nil
	})
}

func (r *contentRepository) Delete(ctx context.Context, siteID, contentID string) error {
	res := r.db.WithContext(ctx).
		Where("site_id = ? AND content_id = ?", siteID, contentID).
		Delete(&domain.Content{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrContentNotFound
	}
	return nil
}

func (r *contentRepository) FindByID(ctx context.Context, siteID, contentTypeID, idOrSlug string) (*domain.Content, error) {
	var c domain.Content
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND content_type_id = ?", siteID, contentTypeID).
		Where("content_id = ? OR slug = ?", idOrSlug, idOrSlug).
		First(&c).Error
	if err != nil {
		return nil, translate(err, common.ErrContentNotFound, "")
	}
	return &c, nil
}

// FindMany translates spec into GORM conditions and returns one page plus the total count
func (r *contentRepository) FindMany(ctx context.Context, spec query.Spec) ([]*domain.Content, int64, error) {
	if !spec.Valid() {
		return nil, 0, ErrUnscopedQuery
	}

	scoped := func() (*gorm.DB, error) {
		tx := r.db.WithContext(ctx).Model(&domain.Content{})
		for _, p := range spec.Predicates() {
			cond, err := contentCondition(p)
			if err != nil {
				return nil, err
			}
			tx = tx.Where(cond)
		}
		return tx, nil
	}

	countQuery, err := scoped()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageQuery, err := scoped()
	if err != nil {
		return nil, 0, err
	}
	for _, s := range spec.Sorts() {
		if !contentColumns[s.Field] {
			return nil, 0, fmt.Errorf("unsupported sort field %q", s.Field)
		}
		pageQuery = pageQuery.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Field}, Desc: s.Desc})
	}

	var items []*domain.Content
	err = pageQuery.Limit(spec.Limit()).Offset(spec.Skip()).Find(&items).Error
	return items, total, err
}

func contentCondition(p query.Predicate) (clause.Expression, error) {
	if fieldID, ok := p.DataField(); ok {
		return datatypes.JSONQuery("data").Equals(p.Value, fieldID), nil
	}
	if !contentColumns[p.Field] {
		return nil, fmt.Errorf("unsupported filter field %q", p.Field)
	}

	switch p.Op {
	case query.OpEq:
		return clause.Eq{Column: clause.Column{Name: p.Field}, Value: p.Value}, nil
	case query.OpContains:
		column, ok := foldedColumns[p.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported contains field %q", p.Field)
		}
		pattern := "%" + query.EscapeLike(domain.FoldTitle(fmt.Sprint(p.Value))) + "%"
		return clause.Expr{
			SQL:  fmt.Sprintf("%s LIKE ? ESCAPE '%s'", column, query.LikeEscape),
			Vars: []interface{}{pattern},
		}, nil
	}
	return nil, fmt.Errorf("unsupported operator %q", p.Op)
}

func (r *contentRepository) CountByType(ctx context.Context, siteID, contentTypeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Content{}).
		Where("site_id = ? AND content_type_id = ?", siteID, contentTypeID).
		Count(&count).Error
	return count, err
}
