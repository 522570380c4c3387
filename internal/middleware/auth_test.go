package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damoang/angple-cms/pkg/jwt"
)

func newSiteRouter(mgr *jwt.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CookieAuth(mgr, testCookie))

	r.GET("/public/:siteId", OptionalSiteAccess(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"editor": IsSiteEditor(c)})
	})

	protected := r.Group("/cms/:siteId", RequireAuth(), RequireSiteAccess())
	protected.GET("/me", func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user": GetUserID(c), "site": claims.SiteID, "role": GetRole(c)})
	})
	return r
}

func TestRequireAuth_Anonymous(t *testing.T) {
	r := newSiteRouter(newTestManager())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/cms/site-a/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestCookieAuth_CookieAndBearer(t *testing.T) {
	mgr := newTestManager()
	r := newSiteRouter(mgr)
	token := issue(t, mgr, "site-a", "editor")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/cms/site-a/me", nil)
	req.AddCookie(&http.Cookie{Name: "authToken", Value: token})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"user-1","site":"site-a","role":"editor"}`, w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/cms/site-a/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireSiteAccess_CrossTenant(t *testing.T) {
	mgr := newTestManager()
	r := newSiteRouter(mgr)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/cms/site-b/me", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, mgr, "site-a", "admin"))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCookieAuth_InvalidCookieIsCleared(t *testing.T) {
	r := newSiteRouter(newTestManager())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/cms/site-a/me", nil)
	req.AddCookie(&http.Cookie{Name: "authToken", Value: "not-a-jwt"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "authToken=;")
}

func TestOptionalSiteAccess(t *testing.T) {
	mgr := newTestManager()
	r := newSiteRouter(mgr)
	token := issue(t, mgr, "site-a", "editor")

	tests := []struct {
		name   string
		path   string
		token  string
		editor bool
	}{
		{name: "anonymous", path: "/public/site-a", editor: false},
		{name: "same site", path: "/public/site-a", token: token, editor: true},
		{name: "other site", path: "/public/site-b", token: token, editor: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var body map[string]bool
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.editor, body["editor"])
		})
	}
}

func TestSiteAccess_RejectsMalformedSiteID(t *testing.T) {
	mgr := newTestManager()
	r := newSiteRouter(mgr)
	token := issue(t, mgr, "site-a", "admin")

	for _, path := range []string{"/cms/%2A/me", "/cms/Site-A/me", "/public/%2A", "/public/a%5Bb%5D"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
