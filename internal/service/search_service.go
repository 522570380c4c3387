package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/query"
	"github.com/damoang/angple-cms/internal/repository"
	es "github.com/damoang/angple-cms/pkg/elasticsearch"
	pkglogger "github.com/damoang/angple-cms/pkg/logger"
)

// SearchIndexer keeps the full-text index in step with published content
type SearchIndexer interface {
	IndexContent(ctx context.Context, c *domain.Content) error
	RemoveContent(ctx context.Context, siteID, contentID string) error
}

type noopIndexer struct{}

func (noopIndexer) IndexContent(context.Context, *domain.Content) error { return nil }
func (noopIndexer) RemoveContent(context.Context, string, string) error { return nil }

// ContentDocument represents a content document indexed in Elasticsearch
type ContentDocument struct {
	SiteID        string `json:"site_id"`
	ContentTypeID string `json:"content_type_id"`
	ContentID     string `json:"content_id"`
	Slug          string `json:"slug"`
	Status        string `json:"status"`
	Title         string `json:"title"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
}

// SearchHit is one search result
type SearchHit struct {
	ContentTypeID string  `json:"contentTypeId"`
	ContentID     string  `json:"contentId"`
	Slug          string  `json:"slug"`
	Title         string  `json:"title"`
	Score         float64 `json:"score,omitempty"`
}

// SearchService searches published content, via Elasticsearch when configured
type SearchService struct {
	esClient *es.Client
	contents repository.ContentRepository
}

// NewSearchService creates a new SearchService. esClient may be nil.
func NewSearchService(esClient *es.Client, contents repository.ContentRepository) *SearchService {
	svc := &SearchService{esClient: esClient, contents: contents}
	if esClient != nil {
		if err := esClient.EnsureIndex(context.Background()); err != nil {
			pkglogger.GetLogger().Error().Err(err).Msg("failed to create ES content index")
		}
	}
	return svc
}

func docID(siteID, contentID string) string {
	return siteID + ":" + contentID
}

// NewContentDocument flattens data values into one text field
func NewContentDocument(c *domain.Content) ContentDocument {
	keys := make([]string, 0, len(c.Data))
	for k := range c.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		switch v := c.Data[k].(type) {
		case string:
			if v != "" {
				parts = append(parts, v)
			}
		case nil:
		case map[string]interface{}, []interface{}:
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}

	return ContentDocument{
		SiteID:        c.SiteID,
		ContentTypeID: c.ContentTypeID,
		ContentID:     c.ContentID,
		Slug:          c.Slug,
		Status:        string(c.Status),
		Title:         c.Title,
		Text:          strings.Join(parts, "\n"),
		CreatedAt:     c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// IndexContent upserts a published document
func (s *SearchService) IndexContent(ctx context.Context, c *domain.Content) error {
	if s.esClient == nil {
		return nil
	}
	return s.esClient.IndexDocument(ctx, docID(c.SiteID, c.ContentID), NewContentDocument(c))
}

// RemoveContent drops a document that is no longer published
func (s *SearchService) RemoveContent(ctx context.Context, siteID, contentID string) error {
	if s.esClient == nil {
		return nil
	}
	return s.esClient.DeleteDocument(ctx, docID(siteID, contentID))
}

// Search returns published matches for q across all content types of a site
func (s *SearchService) Search(ctx context.Context, siteID, q string, limit, skip int) ([]SearchHit, int64, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, 0, common.NewValidationError("q is required", nil)
	}
	limit = query.ClampLimit(limit)
	skip = query.ClampSkip(skip)

	if s.esClient != nil {
		hits, total, err := s.searchIndex(ctx, siteID, q, limit, skip)
		if err == nil {
			return hits, total, nil
		}
		l := pkglogger.WithSite(siteID)
		l.Warn().Err(err).Msg("ES search failed, falling back to database")
	}
	return s.searchDB(ctx, siteID, q, limit, skip)
}

func (s *SearchService) searchIndex(ctx context.Context, siteID, q string, limit, skip int) ([]SearchHit, int64, error) {
	resp, err := s.esClient.Search(ctx, es.ContentQuery(siteID, q), skip, limit)
	if err != nil {
		return nil, 0, err
	}
	hits := make([]SearchHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		hits = append(hits, SearchHit{
			ContentTypeID: sourceString(r.Source, "content_type_id"),
			ContentID:     sourceString(r.Source, "content_id"),
			Slug:          sourceString(r.Source, "slug"),
			Title:         sourceString(r.Source, "title"),
			Score:         r.Score,
		})
	}
	return hits, resp.Total, nil
}

func (s *SearchService) searchDB(ctx context.Context, siteID, q string, limit, skip int) ([]SearchHit, int64, error) {
	spec, err := query.Build(siteID, "", query.AudiencePublic, query.Filters{Search: q, Limit: limit, Skip: skip})
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.contents.FindMany(ctx, spec)
	if err != nil {
		return nil, 0, wrapErr("search content", err)
	}
	hits := make([]SearchHit, 0, len(items))
	for _, c := range items {
		hits = append(hits, SearchHit{
			ContentTypeID: c.ContentTypeID,
			ContentID:     c.ContentID,
			Slug:          c.Slug,
			Title:         c.Title,
		})
	}
	return hits, total, nil
}

func sourceString(src map[string]interface{}, key string) string {
	if v, ok := src[key].(string); ok {
		return v
	}
	return ""
}
