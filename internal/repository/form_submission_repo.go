package repository

import (
	"context"
	"time"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"gorm.io/gorm"
)

var errSubmissionNotFound = common.NewNotFoundError("form submission")

// FormSubmissionRepository lead data access
type FormSubmissionRepository interface {
	Create(ctx context.Context, s *domain.FormSubmission) error
	FindByID(ctx context.Context, siteID, submissionID string) (*domain.FormSubmission, error)
	List(ctx context.Context, siteID string, status domain.SubmissionStatus, limit, skip int) ([]*domain.FormSubmission, int64, error)
	UpdateStatus(ctx context.Context, siteID, submissionID string, status domain.SubmissionStatus) error
	BulkUpdateStatus(ctx context.Context, siteID string, submissionIDs []string, status domain.SubmissionStatus) (int64, error)
	Delete(ctx context.Context, siteID, submissionID string) error
}

type formSubmissionRepository struct {
	db *gorm.DB
}

// NewFormSubmissionRepository creates a new FormSubmissionRepository
func NewFormSubmissionRepository(db *gorm.DB) FormSubmissionRepository {
	return &formSubmissionRepository{db: db}
}

func (r *formSubmissionRepository) Create(ctx context.Context, s *domain.FormSubmission) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *formSubmissionRepository) FindByID(ctx context.Context, siteID, submissionID string) (*domain.FormSubmission, error) {
	var s domain.FormSubmission
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND submission_id = ?", siteID, submissionID).
		First(&s).Error
	if err != nil {
		return nil, translate(err, errSubmissionNotFound, "")
	}
	return &s, nil
}

func (r *formSubmissionRepository) List(ctx context.Context, siteID string, status domain.SubmissionStatus, limit, skip int) ([]*domain.FormSubmission, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.FormSubmission{}).Where("site_id = ?", siteID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*domain.FormSubmission
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(skip).
		Find(&items).Error
	return items, total, err
}

func (r *formSubmissionRepository) UpdateStatus(ctx context.Context, siteID, submissionID string, status domain.SubmissionStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.FormSubmission{}).
		Where("site_id = ? AND submission_id = ?", siteID, submissionID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errSubmissionNotFound
	}
	return nil
}

func (r *formSubmissionRepository) BulkUpdateStatus(ctx context.Context, siteID string, submissionIDs []string, status domain.SubmissionStatus) (int64, error) {
	if len(submissionIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&domain.FormSubmission{}).
		Where("site_id = ? AND submission_id IN ?", siteID, submissionIDs).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *formSubmissionRepository) Delete(ctx context.Context, siteID, submissionID string) error {
	res := r.db.WithContext(ctx).
		Where("site_id = ? AND submission_id = ?", siteID, submissionID).
		Delete(&domain.FormSubmission{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errSubmissionNotFound
	}
	return nil
}
