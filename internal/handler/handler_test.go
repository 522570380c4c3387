package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damoang/angple-cms/internal/config"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/middleware"
	"github.com/damoang/angple-cms/internal/query"
	"github.com/damoang/angple-cms/internal/service"
	"github.com/damoang/angple-cms/pkg/jwt"
)

var testCookie = config.CookieConfig{Name: "authToken", SameSite: "lax"}

func newTestManager() *jwt.Manager {
	return jwt.NewManager("test-secret-key-for-testing-only-32b!", 60)
}

func bearer(t *testing.T, mgr *jwt.Manager, siteID, role string) string {
	t.Helper()
	token, err := mgr.GenerateToken("user-1", siteID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

// envelope mirrors common.Response for decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    *struct {
		Limit int   `json:"limit"`
		Skip  int   `json:"skip"`
		Total int64 `json:"total"`
	} `json:"meta"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func perform(r http.Handler, method, path string, body interface{}, auth string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// mockContentService is a mock implementation of service.ContentService
type mockContentService struct {
	mock.Mock
}

func (m *mockContentService) List(ctx context.Context, siteID, contentTypeID string, audience query.Audience, f query.Filters) (*service.ContentList, error) {
	args := m.Called(ctx, siteID, contentTypeID, audience, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ContentList), args.Error(1)
}

func (m *mockContentService) Get(ctx context.Context, siteID, contentTypeID, idOrSlug string, audience query.Audience) (*domain.Content, error) {
	args := m.Called(ctx, siteID, contentTypeID, idOrSlug, audience)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *mockContentService) Create(ctx context.Context, siteID, contentTypeID string, req *domain.CreateContentRequest, actor string) (*domain.Content, error) {
	args := m.Called(ctx, siteID, contentTypeID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *mockContentService) Update(ctx context.Context, siteID, contentTypeID, contentID string, req *domain.UpdateContentRequest, actor string) (*domain.Content, []string, error) {
	args := m.Called(ctx, siteID, contentTypeID, contentID, req, actor)
	var changed []string
	if v := args.Get(1); v != nil {
		changed = v.([]string)
	}
	if args.Get(0) == nil {
		return nil, changed, args.Error(2)
	}
	return args.Get(0).(*domain.Content), changed, args.Error(2)
}

func (m *mockContentService) Delete(ctx context.Context, siteID, contentTypeID, contentID string, hard bool, actor string) error {
	args := m.Called(ctx, siteID, contentTypeID, contentID, hard, actor)
	return args.Error(0)
}

func (m *mockContentService) Revisions(ctx context.Context, siteID, contentTypeID, contentID string) ([]*domain.Revision, error) {
	args := m.Called(ctx, siteID, contentTypeID, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Revision), args.Error(1)
}

func (m *mockContentService) Restore(ctx context.Context, siteID, contentTypeID, contentID string, version int, actor string) (*domain.Content, error) {
	args := m.Called(ctx, siteID, contentTypeID, contentID, version, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

// contentRouter wires ContentHandler the way routes.Setup does
func contentRouter(svc service.ContentService, mgr *jwt.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewContentHandler(svc)

	g := r.Group("/api/cms/:siteId/content/:contentTypeId", middleware.CookieAuth(mgr, testCookie))
	g.GET("", middleware.OptionalSiteAccess(), h.List)
	g.GET("/:contentId", middleware.OptionalSiteAccess(), h.Get)
	g.POST("", middleware.RequireSiteAccess(), h.Create)
	g.PUT("/:contentId", middleware.RequireSiteAccess(), h.Update)
	g.DELETE("/:contentId", middleware.RequireSiteAccess(), h.Delete)
	g.POST("/:contentId/revisions/:version/restore", middleware.RequireSiteAccess(), h.Restore)
	return r
}
