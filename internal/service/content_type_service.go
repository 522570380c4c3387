package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/repository"
	pkgcache "github.com/damoang/angple-cms/pkg/cache"
	pkglogger "github.com/damoang/angple-cms/pkg/logger"
)

// SiteContentTypeID is the system content type for editable site sections
const SiteContentTypeID = "site-content"

// SystemContentTypes are seeded for every new site
func SystemContentTypes() []domain.ContentType {
	return []domain.ContentType{
		{
			ContentTypeID: SiteContentTypeID,
			Name:          "Site content",
			Description:   "Editable sections of the public site",
			IsSystem:      true,
			Fields: []domain.ContentTypeField{
				{FieldID: "section", Name: "Section", Type: domain.FieldText},
				{FieldID: "heading", Name: "Heading", Type: domain.FieldText},
				{FieldID: "body", Name: "Body", Type: domain.FieldRichText},
				{FieldID: "image", Name: "Image", Type: domain.FieldImage},
			},
		},
	}
}

// ContentTypeService content type schema business logic
type ContentTypeService interface {
	List(ctx context.Context, siteID string) ([]*domain.ContentType, error)
	Get(ctx context.Context, siteID, contentTypeID string) (*domain.ContentType, error)
	Create(ctx context.Context, siteID string, req *domain.CreateContentTypeRequest) (*domain.ContentType, error)
	Update(ctx context.Context, siteID, contentTypeID string, req *domain.UpdateContentTypeRequest) (*domain.ContentType, error)
	Delete(ctx context.Context, siteID, contentTypeID string) error
	Validate(ctx context.Context, siteID, contentTypeID string, payload map[string]interface{}) (*ValidationResult, error)
	EnsureSystemTypes(ctx context.Context, siteID string) error
}

type contentTypeService struct {
	repo     repository.ContentTypeRepository
	contents repository.ContentRepository
	cache    pkgcache.Service
}

// NewContentTypeService creates a new ContentTypeService; cache may be a disabled pkgcache.Service
func NewContentTypeService(repo repository.ContentTypeRepository, contents repository.ContentRepository, cache pkgcache.Service) ContentTypeService {
	if cache == nil {
		cache = pkgcache.NewService(nil)
	}
	return &contentTypeService{repo: repo, contents: contents, cache: cache}
}

func (s *contentTypeService) List(ctx context.Context, siteID string) ([]*domain.ContentType, error) {
	types, err := s.repo.List(ctx, siteID)
	return types, wrapErr("list content types", err)
}

// Get 캐시 우선 조회
func (s *contentTypeService) Get(ctx context.Context, siteID, contentTypeID string) (*domain.ContentType, error) {
	if data, err := s.cache.GetContentType(ctx, siteID, contentTypeID); err == nil {
		var ct domain.ContentType
		if json.Unmarshal(data, &ct) == nil {
			return &ct, nil
		}
	}

	ct, err := s.repo.FindByID(ctx, siteID, contentTypeID)
	if err != nil {
		return nil, wrapErr("get content type", err)
	}

	if err := s.cache.SetContentType(ctx, siteID, contentTypeID, ct); err != nil {
		pkglogger.GetLogger().Debug().Err(err).Msg("content type cache set failed")
	}
	return ct, nil
}

func (s *contentTypeService) Create(ctx context.Context, siteID string, req *domain.CreateContentTypeRequest) (*domain.ContentType, error) {
	id := strings.TrimSpace(req.ContentTypeID)
	if !domain.SlugPattern.MatchString(id) {
		return nil, common.NewValidationError("invalid contentTypeId", map[string]string{
			"contentTypeId": "must be lowercase letters, digits, '-' or '_' (max 64)",
		})
	}
	if errs := ValidateDefinition(req.Fields); len(errs) > 0 {
		return nil, common.NewValidationError("invalid content type fields", errs)
	}

	ct := &domain.ContentType{
		SiteID:        siteID,
		ContentTypeID: id,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Fields:        normalizeFields(req.Fields),
	}
	if err := s.repo.Create(ctx, ct); err != nil {
		return nil, wrapErr("create content type", err)
	}
	return ct, nil
}

func (s *contentTypeService) Update(ctx context.Context, siteID, contentTypeID string, req *domain.UpdateContentTypeRequest) (*domain.ContentType, error) {
	ct, err := s.repo.FindByID(ctx, siteID, contentTypeID)
	if err != nil {
		return nil, wrapErr("get content type", err)
	}

	if req.Name != nil {
		ct.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		ct.Description = *req.Description
	}
	if req.Fields != nil {
		if errs := ValidateDefinition(req.Fields); len(errs) > 0 {
			return nil, common.NewValidationError("invalid content type fields", errs)
		}
		ct.Fields = normalizeFields(req.Fields)
	}

	if err := s.repo.Update(ctx, ct); err != nil {
		return nil, wrapErr("update content type", err)
	}
	s.invalidate(ctx, siteID, contentTypeID)
	return ct, nil
}

// Delete 시스템 타입과 콘텐츠가 남아있는 타입은 삭제 불가
func (s *contentTypeService) Delete(ctx context.Context, siteID, contentTypeID string) error {
	ct, err := s.repo.FindByID(ctx, siteID, contentTypeID)
	if err != nil {
		return wrapErr("get content type", err)
	}
	if ct.IsSystem {
		return common.ErrSystemContentType
	}

	n, err := s.contents.CountByType(ctx, siteID, contentTypeID)
	if err != nil {
		return wrapErr("count content", err)
	}
	if n > 0 {
		return common.NewConflictError("content type still has content")
	}

	if err := s.repo.Delete(ctx, siteID, contentTypeID); err != nil {
		return wrapErr("delete content type", err)
	}
	s.invalidate(ctx, siteID, contentTypeID)
	return nil
}

func (s *contentTypeService) Validate(ctx context.Context, siteID, contentTypeID string, payload map[string]interface{}) (*ValidationResult, error) {
	ct, err := s.Get(ctx, siteID, contentTypeID)
	if err != nil {
		return nil, err
	}
	res := ValidateContent(ct, payload)
	return &res, nil
}

// EnsureSystemTypes creates missing system content types for siteID
func (s *contentTypeService) EnsureSystemTypes(ctx context.Context, siteID string) error {
	for _, tmpl := range SystemContentTypes() {
		_, err := s.repo.FindByID(ctx, siteID, tmpl.ContentTypeID)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrContentTypeNotFound) {
			return wrapErr("get content type", err)
		}

		ct := tmpl
		ct.SiteID = siteID
		if err := s.repo.Create(ctx, &ct); err != nil && common.KindOf(err) != common.KindConflict {
			return wrapErr("seed content type", err)
		}
	}
	return nil
}

func (s *contentTypeService) invalidate(ctx context.Context, siteID, contentTypeID string) {
	if err := s.cache.InvalidateContentType(ctx, siteID, contentTypeID); err != nil {
		l := pkglogger.WithSite(siteID)
		l.Warn().Err(err).Msg("content type cache invalidation failed")
	}
}

func normalizeFields(fields []domain.ContentTypeField) []domain.ContentTypeField {
	out := make([]domain.ContentTypeField, len(fields))
	for i, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			f.Name = f.FieldID
		}
		if f.Type != domain.FieldSelect {
			f.Options = nil
		}
		out[i] = f
	}
	return out
}
