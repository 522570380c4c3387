package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/query"
	"github.com/damoang/angple-cms/internal/repository"
)

const (
	maxSubmissionFields = 50
	maxUserAgentBytes   = 512
)

// FormSubmissionService lead capture business logic
type FormSubmissionService interface {
	Create(ctx context.Context, siteID string, req *domain.CreateFormSubmissionRequest, ip, userAgent string) (*domain.FormSubmission, error)
	List(ctx context.Context, siteID string, status domain.SubmissionStatus, limit, skip int) ([]*domain.FormSubmission, *common.ListMeta, error)
	Get(ctx context.Context, siteID, submissionID string) (*domain.FormSubmission, error)
	UpdateStatus(ctx context.Context, siteID, submissionID string, status domain.SubmissionStatus) (*domain.FormSubmission, error)
	BulkUpdateStatus(ctx context.Context, siteID string, req *domain.BulkSubmissionStatusRequest) (int64, error)
	Delete(ctx context.Context, siteID, submissionID string) error
}

type formSubmissionService struct {
	repo   repository.FormSubmissionRepository
	events EventPublisher
}

// NewFormSubmissionService creates a new FormSubmissionService. events may be nil.
func NewFormSubmissionService(repo repository.FormSubmissionRepository, events EventPublisher) FormSubmissionService {
	if events == nil {
		events = noopPublisher{}
	}
	return &formSubmissionService{repo: repo, events: events}
}

func (s *formSubmissionService) Create(ctx context.Context, siteID string, req *domain.CreateFormSubmissionRequest, ip, userAgent string) (*domain.FormSubmission, error) {
	if len(req.Data) == 0 {
		return nil, common.NewValidationError("data is required", nil)
	}
	if len(req.Data) > maxSubmissionFields {
		return nil, common.NewValidationError("too many fields", map[string]int{"max": maxSubmissionFields})
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		if v, ok := req.Data["email"].(string); ok {
			email = strings.TrimSpace(v)
		}
	}
	userAgent = truncateUTF8(userAgent, maxUserAgentBytes)

	sub := &domain.FormSubmission{
		SiteID:       siteID,
		SubmissionID: uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		Data:         req.Data,
		Email:        strings.ToLower(email),
		Status:       domain.SubmissionNew,
		IP:           ip,
		UserAgent:    userAgent,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, wrapErr("create form submission", err)
	}

	s.events.Publish(ctx, Event{
		Name:       domain.EventFormSubmissionCreated,
		SiteID:     siteID,
		OccurredAt: time.Now(),
		Data:       sub,
	})
	return sub, nil
}

func (s *formSubmissionService) List(ctx context.Context, siteID string, status domain.SubmissionStatus, limit, skip int) ([]*domain.FormSubmission, *common.ListMeta, error) {
	if status != "" && !status.Valid() {
		return nil, nil, common.NewValidationError("invalid status", map[string]string{"status": string(status)})
	}
	limit = query.ClampLimit(limit)
	skip = query.ClampSkip(skip)

	items, total, err := s.repo.List(ctx, siteID, status, limit, skip)
	if err != nil {
		return nil, nil, wrapErr("list form submissions", err)
	}
	if items == nil {
		items = []*domain.FormSubmission{}
	}
	return items, common.NewListMeta(limit, skip, total), nil
}

func (s *formSubmissionService) Get(ctx context.Context, siteID, submissionID string) (*domain.FormSubmission, error) {
	sub, err := s.repo.FindByID(ctx, siteID, submissionID)
	return sub, wrapErr("get form submission", err)
}

func (s *formSubmissionService) UpdateStatus(ctx context.Context, siteID, submissionID string, status domain.SubmissionStatus) (*domain.FormSubmission, error) {
	if !status.Valid() {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": string(status)})
	}
	if err := s.repo.UpdateStatus(ctx, siteID, submissionID, status); err != nil {
		return nil, wrapErr("update form submission", err)
	}
	return s.Get(ctx, siteID, submissionID)
}

// BulkUpdateStatus 중복 ID 제거 후 일괄 변경, 변경된 건수 반환
func (s *formSubmissionService) BulkUpdateStatus(ctx context.Context, siteID string, req *domain.BulkSubmissionStatusRequest) (int64, error) {
	if !req.Status.Valid() {
		return 0, common.NewValidationError("invalid status", map[string]string{"status": string(req.Status)})
	}

	seen := make(map[string]struct{}, len(req.IDs))
	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, common.NewValidationError("ids is required", nil)
	}

	n, err := s.repo.BulkUpdateStatus(ctx, siteID, ids, req.Status)
	return n, wrapErr("bulk update form submissions", err)
}

func (s *formSubmissionService) Delete(ctx context.Context, siteID, submissionID string) error {
	return wrapErr("delete form submission", s.repo.Delete(ctx, siteID, submissionID))
}

// truncateUTF8 cuts s to at most n bytes on a rune boundary; invalid bytes are dropped
func truncateUTF8(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
