package middleware

import (
	"net/http"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/gin-gonic/gin"
)

// RequireAuth rejects anonymous requests; run after CookieAuth
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			msg := "authentication required"
			if c.GetBool(ctxTokenExpired) {
				msg = "token expired"
			}
			common.AbortWithError(c, http.StatusUnauthorized, msg)
			return
		}
		c.Next()
	}
}

// RequireSiteAccess token 의 siteId 와 :siteId 경로 파라미터가 같아야 함
func RequireSiteAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			common.AbortWithError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !domain.ValidSiteID(c.Param("siteId")) {
			common.AbortWithError(c, http.StatusBadRequest, common.ErrInvalidSite.Message)
			return
		}
		if GetSiteID(c) != c.Param("siteId") {
			common.AbortWithError(c, http.StatusForbidden, common.ErrSiteMismatch.Message)
			return
		}
		c.Next()
	}
}

// OptionalSiteAccess marks the request as a site editor when the token matches :siteId.
// Public routes use it to widen visibility without requiring a login.
func OptionalSiteAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !domain.ValidSiteID(c.Param("siteId")) {
			common.AbortWithError(c, http.StatusBadRequest, common.ErrInvalidSite.Message)
			return
		}
		c.Set(ctxSiteEditor, IsAuthenticated(c) && GetSiteID(c) == c.Param("siteId"))
		c.Next()
	}
}

const ctxSiteEditor = "siteEditor"

// IsSiteEditor reports whether the caller is signed in to the requested site
func IsSiteEditor(c *gin.Context) bool {
	return c.GetBool(ctxSiteEditor)
}
