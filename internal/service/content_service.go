package service

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/query"
	"github.com/damoang/angple-cms/internal/repository"
	pkgcache "github.com/damoang/angple-cms/pkg/cache"
	pkglogger "github.com/damoang/angple-cms/pkg/logger"
)

// ContentList is one page of content with its total
type ContentList struct {
	Items []*domain.Content `json:"items"`
	Total int64             `json:"total"`
	Limit int               `json:"limit"`
	Skip  int               `json:"skip"`
}

// ContentService content document business logic
type ContentService interface {
	List(ctx context.Context, siteID, contentTypeID string, audience query.Audience, f query.Filters) (*ContentList, error)
	Get(ctx context.Context, siteID, contentTypeID, idOrSlug string, audience query.Audience) (*domain.Content, error)
	Create(ctx context.Context, siteID, contentTypeID string, req *domain.CreateContentRequest, actor string) (*domain.Content, error)
	// Update returns the stored document and the changed keys; no change means no revision
	Update(ctx context.Context, siteID, contentTypeID, contentID string, req *domain.UpdateContentRequest, actor string) (*domain.Content, []string, error)
	Delete(ctx context.Context, siteID, contentTypeID, contentID string, hard bool, actor string) error
	Revisions(ctx context.Context, siteID, contentTypeID, contentID string) ([]*domain.Revision, error)
	Restore(ctx context.Context, siteID, contentTypeID, contentID string, version int, actor string) (*domain.Content, error)
}

type contentService struct {
	repo      repository.ContentRepository
	revisions repository.RevisionRepository
	types     ContentTypeService
	cache     pkgcache.Service
	events    EventPublisher
	indexer   SearchIndexer
	now       func() time.Time
}

// NewContentService creates a new ContentService. cache, events and indexer may be nil.
func NewContentService(
	repo repository.ContentRepository,
	revisions repository.RevisionRepository,
	types ContentTypeService,
	cache pkgcache.Service,
	events EventPublisher,
	indexer SearchIndexer,
) ContentService {
	if cache == nil {
		cache = pkgcache.NewService(nil)
	}
	if events == nil {
		events = noopPublisher{}
	}
	if indexer == nil {
		indexer = noopIndexer{}
	}
	return &contentService{
		repo:      repo,
		revisions: revisions,
		types:     types,
		cache:     cache,
		events:    events,
		indexer:   indexer,
		now:       time.Now,
	}
}

// List 공개 목록은 캐시 사용
func (s *contentService) List(ctx context.Context, siteID, contentTypeID string, audience query.Audience, f query.Filters) (*ContentList, error) {
	spec, err := query.Build(siteID, contentTypeID, audience, f)
	if err != nil {
		return nil, err
	}

	var fingerprint string
	if audience == query.AudiencePublic {
		fingerprint = pkgcache.Fingerprint(spec.Predicates(), spec.Limit(), spec.Skip())
		if data, err := s.cache.GetContentList(ctx, siteID, contentTypeID, fingerprint); err == nil {
			var cached ContentList
			if json.Unmarshal(data, &cached) == nil {
				return &cached, nil
			}
		}
	}

	items, total, err := s.repo.FindMany(ctx, spec)
	if err != nil {
		return nil, wrapErr("list content", err)
	}
	if items == nil {
		items = []*domain.Content{}
	}
	list := &ContentList{Items: items, Total: total, Limit: spec.Limit(), Skip: spec.Skip()}

	if audience == query.AudiencePublic {
		if err := s.cache.SetContentList(ctx, siteID, contentTypeID, fingerprint, list); err != nil {
			pkglogger.GetLogger().Debug().Err(err).Msg("content list cache set failed")
		}
	}
	return list, nil
}

// Get 공개 조회는 published 만 허용
func (s *contentService) Get(ctx context.Context, siteID, contentTypeID, idOrSlug string, audience query.Audience) (*domain.Content, error) {
	c, err := s.repo.FindByID(ctx, siteID, contentTypeID, idOrSlug)
	if err != nil {
		return nil, wrapErr("get content", err)
	}
	if audience == query.AudiencePublic && c.Status != domain.ContentStatusPublished {
		return nil, common.ErrContentNotFound
	}
	return c, nil
}

func (s *contentService) Create(ctx context.Context, siteID, contentTypeID string, req *domain.CreateContentRequest, actor string) (*domain.Content, error) {
	ct, err := s.types.Get(ctx, siteID, contentTypeID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, common.NewValidationError("title is required", nil)
	}

	status := req.Status
	if status == "" {
		status = domain.ContentStatusDraft
	}
	if !status.Valid() {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": string(status)})
	}

	data := req.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	if res := ValidateContent(ct, data); !res.Valid {
		return nil, common.NewValidationError("validation failed", res.Errors)
	}

	contentID := uuid.NewString()
	slug, err := normalizeSlug(req.Slug, contentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := &domain.Content{
		SiteID:        siteID,
		ContentTypeID: contentTypeID,
		ContentID:     contentID,
		Title:         title,
		Slug:          slug,
		Data:          ct.StripUnknown(data),
		Status:        status,
		Version:       1,
		CreatedBy:     actor,
		UpdatedBy:     actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == domain.ContentStatusPublished {
		c.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, wrapErr("create content", err)
	}
	contentWritesTotal.WithLabelValues("create").Inc()

	s.afterWrite(ctx, nil, c, DiffContent(&domain.Content{}, c))
	return c, nil
}

func (s *contentService) Update(ctx context.Context, siteID, contentTypeID, contentID string, req *domain.UpdateContentRequest, actor string) (*domain.Content, []string, error) {
	current, err := s.repo.FindByID(ctx, siteID, contentTypeID, contentID)
	if err != nil {
		return nil, nil, wrapErr("get content", err)
	}
	if req.Version != nil && *req.Version != current.Version {
		return nil, nil, common.ErrVersionConflict
	}

	next := cloneContent(current)
	if req.Title != nil {
		next.Title = strings.TrimSpace(*req.Title)
		if next.Title == "" {
			return nil, nil, common.NewValidationError("title is required", nil)
		}
	}
	if req.Slug != nil {
		slug, err := normalizeSlug(*req.Slug, current.ContentID)
		if err != nil {
			return nil, nil, err
		}
		next.Slug = slug
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, nil, common.NewValidationError("invalid status", map[string]string{"status": string(*req.Status)})
		}
		next.Status = *req.Status
	}
	if req.Data != nil {
		ct, err := s.types.Get(ctx, siteID, contentTypeID)
		if err != nil {
			return nil, nil, err
		}
		if res := ValidateContent(ct, req.Data); !res.Valid {
			return nil, nil, common.NewValidationError("validation failed", res.Errors)
		}
		next.Data = ct.StripUnknown(req.Data)
	}

	changeType := domain.RevisionUpdate
	if next.Status == domain.ContentStatusArchived && current.Status != domain.ContentStatusArchived {
		changeType = domain.RevisionArchive
	}
	return s.apply(ctx, current, next, changeType, actor)
}

// Delete archives by default; hard removes the row but keeps its revisions
func (s *contentService) Delete(ctx context.Context, siteID, contentTypeID, contentID string, hard bool, actor string) error {
	current, err := s.repo.FindByID(ctx, siteID, contentTypeID, contentID)
	if err != nil {
		return wrapErr("get content", err)
	}

	if hard {
		if err := s.repo.Delete(ctx, siteID, current.ContentID); err != nil {
			return wrapErr("delete content", err)
		}
		contentWritesTotal.WithLabelValues("delete").Inc()
		s.invalidate(ctx, siteID, contentTypeID)
		if current.Status == domain.ContentStatusPublished {
			s.removeFromIndex(ctx, current)
		}
		s.events.Publish(ctx, Event{Name: domain.EventContentDeleted, SiteID: siteID, OccurredAt: s.now(), Data: current})
		return nil
	}

	if current.Status == domain.ContentStatusArchived {
		return nil
	}
	next := cloneContent(current)
	next.Status = domain.ContentStatusArchived
	_, _, err = s.apply(ctx, current, next, domain.RevisionArchive, actor)
	return err
}

func (s *contentService) Revisions(ctx context.Context, siteID, contentTypeID, contentID string) ([]*domain.Revision, error) {
	current, err := s.repo.FindByID(ctx, siteID, contentTypeID, contentID)
	if err != nil {
		return nil, wrapErr("get content", err)
	}
	revs, err := s.revisions.ListByContent(ctx, siteID, current.ContentID)
	return revs, wrapErr("list revisions", err)
}

// Restore 지정 버전의 스냅샷으로 되돌림 (현재 상태는 새 리비전으로 보존)
func (s *contentService) Restore(ctx context.Context, siteID, contentTypeID, contentID string, version int, actor string) (*domain.Content, error) {
	current, err := s.repo.FindByID(ctx, siteID, contentTypeID, contentID)
	if err != nil {
		return nil, wrapErr("get content", err)
	}
	rev, err := s.revisions.FindByVersion(ctx, siteID, current.ContentID, version)
	if err != nil {
		return nil, wrapErr("get revision", err)
	}

	// 스냅샷은 현재 스키마로 다시 검증 (스키마가 바뀌었으면 복원 거부)
	ct, err := s.types.Get(ctx, siteID, contentTypeID)
	if err != nil {
		return nil, err
	}
	if res := ValidateContent(ct, rev.Data); !res.Valid {
		return nil, common.NewValidationError("revision no longer matches the content type", res.Errors)
	}

	next := cloneContent(current)
	next.Title = rev.Title
	next.Slug = rev.Slug
	next.Status = rev.Status
	next.Data = ct.StripUnknown(cloneData(rev.Data))

	c, _, err := s.apply(ctx, current, next, domain.RevisionRestore, actor)
	return c, err
}

// apply writes next over current with a revision of current, then runs side effects
func (s *contentService) apply(ctx context.Context, current, next *domain.Content, changeType domain.RevisionChangeType, actor string) (*domain.Content, []string, error) {
	changed := DiffContent(current, next)
	if len(changed) == 0 {
		return current, nil, nil
	}

	now := s.now()
	next.Version = current.Version + 1
	next.UpdatedBy = actor
	next.UpdatedAt = now
	if next.Status == domain.ContentStatusPublished && next.PublishedAt == nil {
		next.PublishedAt = &now
	}

	rev := domain.NewRevision(current, changeType, actor)
	if err := s.repo.UpdateWithRevision(ctx, next, current.Version, rev); err != nil {
		return nil, nil, wrapErr("update content", err)
	}
	contentWritesTotal.WithLabelValues(string(changeType)).Inc()

	s.afterWrite(ctx, current, next, changed)
	return next, changed, nil
}

// afterWrite cache, search index and webhook side effects; prev is nil on create
func (s *contentService) afterWrite(ctx context.Context, prev, c *domain.Content, changed []string) {
	s.invalidate(ctx, c.SiteID, c.ContentTypeID)

	wasPublished := prev != nil && prev.Status == domain.ContentStatusPublished
	switch {
	case c.Status == domain.ContentStatusPublished:
		if err := s.indexer.IndexContent(ctx, c); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("content_id", c.ContentID).Msg("search index failed")
		}
	case wasPublished:
		s.removeFromIndex(ctx, c)
	}

	now := s.now()
	publish := func(name string) {
		s.events.Publish(ctx, Event{Name: name, SiteID: c.SiteID, OccurredAt: now, Data: c, ChangedFields: changed})
	}

	if prev == nil {
		publish(domain.EventContentCreated)
	} else {
		publish(domain.EventContentUpdated)
	}
	if c.Status != statusOf(prev) {
		switch c.Status {
		case domain.ContentStatusPublished:
			publish(domain.EventContentPublished)
		case domain.ContentStatusArchived:
			publish(domain.EventContentArchived)
		}
	}
}

func (s *contentService) removeFromIndex(ctx context.Context, c *domain.Content) {
	if err := s.indexer.RemoveContent(ctx, c.SiteID, c.ContentID); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("content_id", c.ContentID).Msg("search index removal failed")
	}
}

func (s *contentService) invalidate(ctx context.Context, siteID, contentTypeID string) {
	if err := s.cache.InvalidateContent(ctx, siteID, contentTypeID); err != nil {
		l := pkglogger.WithSite(siteID)
		l.Warn().Err(err).Msg("content cache invalidation failed")
	}
}

// DiffContent lists changed keys between two versions: title, slug, status and data.<fieldId>
func DiffContent(prev, next *domain.Content) []string {
	var changed []string
	if prev.Title != next.Title {
		changed = append(changed, "title")
	}
	if prev.Slug != next.Slug {
		changed = append(changed, "slug")
	}
	if prev.Status != next.Status {
		changed = append(changed, "status")
	}

	keys := make(map[string]struct{}, len(prev.Data)+len(next.Data))
	for k := range prev.Data {
		keys[k] = struct{}{}
	}
	for k := range next.Data {
		keys[k] = struct{}{}
	}
	var dataKeys []string
	for k := range keys {
		a, inPrev := prev.Data[k]
		b, inNext := next.Data[k]
		if inPrev != inNext || !jsonEqual(a, b) {
			dataKeys = append(dataKeys, "data."+k)
		}
	}
	sort.Strings(dataKeys)
	return append(changed, dataKeys...)
}

func jsonEqual(a, b interface{}) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

func normalizeSlug(raw, fallback string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(raw))
	if slug == "" {
		return fallback, nil
	}
	if !domain.ContentSlugPattern.MatchString(slug) {
		return "", common.NewValidationError("invalid slug", map[string]string{
			"slug": "must be lowercase letters, digits, '-' or '_'",
		})
	}
	return slug, nil
}

func statusOf(c *domain.Content) domain.ContentStatus {
	if c == nil {
		return ""
	}
	return c.Status
}

func cloneContent(c *domain.Content) *domain.Content {
	out := *c
	out.Data = cloneData(c.Data)
	return &out
}

func cloneData(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
