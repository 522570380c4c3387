package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/damoang/angple-cms/internal/config"
	"github.com/damoang/angple-cms/internal/handler"
	"github.com/damoang/angple-cms/internal/middleware"
	"github.com/damoang/angple-cms/internal/migration"
	"github.com/damoang/angple-cms/internal/repository"
	"github.com/damoang/angple-cms/internal/routes"
	"github.com/damoang/angple-cms/internal/service"
	"github.com/damoang/angple-cms/pkg/jwt"
	pkgstorage "github.com/damoang/angple-cms/pkg/storage"
)

const (
	siteID        = "acme"
	adminEmail    = "admin@acme.test"
	adminPassword = "correct-horse-battery"
)

// CMSAPISuite runs the CMS API end to end over an in-memory database
type CMSAPISuite struct {
	suite.Suite
	db         *gorm.DB
	router     *gin.Engine
	dispatcher *service.WebhookDispatcher
	token      string
}

func TestCMSAPISuite(t *testing.T) {
	suite.Run(t, new(CMSAPISuite))
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func (s *CMSAPISuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	// Use SQLite for tests (no external DB dependency)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(migration.Run(db))
	s.db = db

	cfg := &config.Config{
		Cookie:    config.CookieConfig{Name: "authToken", SameSite: "lax"},
		RateLimit: config.RateLimitConfig{FormsPerMinute: 5},
	}
	jwtManager := jwt.NewManager("test-secret-key-for-integration-tests!!", 60)

	store, err := pkgstorage.NewLocalStorage(s.T().TempDir(), "/uploads")
	s.Require().NoError(err)

	contentRepo := repository.NewContentRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)

	s.dispatcher = service.NewWebhookDispatcher(webhookRepo, service.DispatcherConfig{})
	searchService := service.NewSearchService(nil, contentRepo)
	types := service.NewContentTypeService(repository.NewContentTypeRepository(db), contentRepo, nil)
	contents := service.NewContentService(contentRepo, repository.NewRevisionRepository(db), types, nil, s.dispatcher, searchService)
	auth := service.NewAuthService(repository.NewUserRepository(db), types, jwtManager)

	s.router = gin.New()
	s.router.Use(middleware.Recovery())
	routes.Setup(s.router, routes.Handlers{
		Auth:           handler.NewAuthHandler(auth, cfg.Cookie),
		ContentType:    handler.NewContentTypeHandler(types),
		Content:        handler.NewContentHandler(contents),
		FormSubmission: handler.NewFormSubmissionHandler(service.NewFormSubmissionService(repository.NewFormSubmissionRepository(db), s.dispatcher)),
		Media:          handler.NewMediaHandler(service.NewMediaService(repository.NewMediaRepository(db), store, 5, nil)),
		SiteContent:    handler.NewSiteContentHandler(service.NewSiteContentService(repository.NewSiteContentRepository(db), nil)),
		Webhook:        handler.NewWebhookHandler(service.NewWebhookService(webhookRepo)),
		Search:         handler.NewSearchHandler(searchService),
	}, jwtManager, cfg, nil)

	s.bootstrapAdmin()
}

func (s *CMSAPISuite) TearDownSuite() {
	s.dispatcher.Wait()
}

func (s *CMSAPISuite) bootstrapAdmin() {
	w := s.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"email": adminEmail, "password": adminPassword, "siteId": siteID,
	}, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email": adminEmail, "password": adminPassword, "siteId": siteID,
	}, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var login struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &login))
	s.Require().NotEmpty(login.Token)
	s.token = login.Token
}

func (s *CMSAPISuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *CMSAPISuite) decode(w *httptest.ResponseRecorder) apiResponse {
	var resp apiResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func (s *CMSAPISuite) TestLogin_WrongPasswordAndUnknownUserLookAlike() {
	wrong := s.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email": adminEmail, "password": "nope-nope-nope", "siteId": siteID,
	}, "")
	unknown := s.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ghost@acme.test", "password": adminPassword, "siteId": siteID,
	}, "")

	s.Equal(http.StatusUnauthorized, wrong.Code)
	s.Equal(http.StatusUnauthorized, unknown.Code)
	s.Equal(wrong.Body.String(), unknown.Body.String())
}

func (s *CMSAPISuite) TestSignup_ClosedAfterBootstrap() {
	w := s.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "intruder@acme.test", "password": "password123", "siteId": siteID,
	}, "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *CMSAPISuite) TestMe() {
	w := s.request(http.MethodGet, "/api/auth/me", nil, s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), adminEmail)
	s.Contains(w.Body.String(), `"role":"admin"`)
}

func (s *CMSAPISuite) TestTeamValidationEndToEnd() {
	w := s.request(http.MethodPost, "/api/cms/"+siteID+"/content-types", map[string]interface{}{
		"contentTypeId": "team",
		"name":          "Team",
		"fields": []map[string]interface{}{
			{"fieldId": "name", "name": "Name", "type": "text", "required": true},
			{"fieldId": "role", "name": "Role", "type": "text", "required": true},
		},
	}, s.token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.request(http.MethodPost, "/api/cms/"+siteID+"/content-types/team/validate", map[string]interface{}{
		"data": map[string]interface{}{"name": "Sam"},
	}, s.token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result service.ValidationResult
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &result))
	s.False(result.Valid)
	s.Require().Len(result.Errors, 1)
	s.Equal("role", result.Errors[0].FieldID)

	// the same payload is refused as content
	w = s.request(http.MethodPost, "/api/cms/"+siteID+"/content/team", map[string]interface{}{
		"title": "Sam",
		"data":  map[string]interface{}{"name": "Sam"},
	}, s.token)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *CMSAPISuite) TestDraftSiteContentIsHiddenFromPublic() {
	w := s.request(http.MethodPost, "/api/cms/"+siteID+"/content/site-content", map[string]interface{}{
		"title":  "Hero",
		"status": "draft",
		"data":   map[string]interface{}{"section": "hero", "heading": "Coming soon"},
	}, s.token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	public := s.request(http.MethodGet, "/api/cms/"+siteID+"/content/site-content", nil, "")
	s.Require().Equal(http.StatusOK, public.Code)
	var publicItems []map[string]interface{}
	s.Require().NoError(json.Unmarshal(s.decode(public).Data, &publicItems))
	s.Empty(publicItems)

	admin := s.request(http.MethodGet, "/api/cms/"+siteID+"/content/site-content", nil, s.token)
	s.Require().Equal(http.StatusOK, admin.Code)
	var adminItems []map[string]interface{}
	s.Require().NoError(json.Unmarshal(s.decode(admin).Data, &adminItems))
	s.Require().Len(adminItems, 1)
	s.Equal("draft", adminItems[0]["status"])

	// a public status filter never reveals drafts
	filtered := s.request(http.MethodGet, "/api/cms/"+siteID+"/content/site-content?status=draft", nil, "")
	var filteredItems []map[string]interface{}
	s.Require().NoError(json.Unmarshal(s.decode(filtered).Data, &filteredItems))
	s.Empty(filteredItems)
}

func (s *CMSAPISuite) TestCrossTenantAccessIsForbidden() {
	w := s.request(http.MethodGet, "/api/cms/other-site/content-types", nil, s.token)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *CMSAPISuite) TestPublicFormSubmission() {
	w := s.request(http.MethodPost, "/api/cms/"+siteID+"/form-submissions", map[string]interface{}{
		"title": "Contact",
		"data":  map[string]interface{}{"email": "Lead@Example.com", "message": "hi"},
	}, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"email":"lead@example.com"`)

	list := s.request(http.MethodGet, "/api/cms/"+siteID+"/form-submissions", nil, "")
	s.Equal(http.StatusUnauthorized, list.Code)
}
