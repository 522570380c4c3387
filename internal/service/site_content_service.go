package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/repository"
	pkgcache "github.com/damoang/angple-cms/pkg/cache"
	pkglogger "github.com/damoang/angple-cms/pkg/logger"
)

// SiteContentService per-site text configuration
type SiteContentService interface {
	// Get returns empty fields when the site has none saved yet
	Get(ctx context.Context, siteID string) (*domain.SiteContent, error)
	Upsert(ctx context.Context, siteID string, req *domain.UpsertSiteContentRequest, actor string) (*domain.SiteContent, error)
}

type siteContentService struct {
	repo  repository.SiteContentRepository
	cache pkgcache.Service
}

// NewSiteContentService creates a new SiteContentService. cache may be nil.
func NewSiteContentService(repo repository.SiteContentRepository, cache pkgcache.Service) SiteContentService {
	if cache == nil {
		cache = pkgcache.NewService(nil)
	}
	return &siteContentService{repo: repo, cache: cache}
}

func (s *siteContentService) Get(ctx context.Context, siteID string) (*domain.SiteContent, error) {
	if data, err := s.cache.GetSiteContent(ctx, siteID); err == nil {
		var sc domain.SiteContent
		if json.Unmarshal(data, &sc) == nil {
			return &sc, nil
		}
	}

	sc, err := s.repo.FindBySite(ctx, siteID)
	if err != nil {
		if common.KindOf(err) != common.KindNotFound {
			return nil, wrapErr("get site content", err)
		}
		sc = &domain.SiteContent{SiteID: siteID, Fields: map[string]interface{}{}}
	}

	if err := s.cache.SetSiteContent(ctx, siteID, sc); err != nil {
		pkglogger.GetLogger().Debug().Err(err).Msg("site content cache set failed")
	}
	return sc, nil
}

func (s *siteContentService) Upsert(ctx context.Context, siteID string, req *domain.UpsertSiteContentRequest, actor string) (*domain.SiteContent, error) {
	if req.Fields == nil {
		return nil, common.NewValidationError("fields is required", nil)
	}

	now := time.Now()
	sc := &domain.SiteContent{
		SiteID:    siteID,
		Fields:    req.Fields,
		UpdatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, sc); err != nil {
		return nil, wrapErr("upsert site content", err)
	}
	if err := s.cache.InvalidateSiteContent(ctx, siteID); err != nil {
		l := pkglogger.WithSite(siteID)
		l.Warn().Err(err).Msg("site content cache invalidation failed")
	}

	// 저장된 행을 다시 읽어 created_at 보존
	return s.repo.FindBySite(ctx, siteID)
}
