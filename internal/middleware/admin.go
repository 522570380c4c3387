package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/config"
	"github.com/damoang/angple-cms/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// RequireRole checks that the authenticated user has one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		common.AbortWithError(c, http.StatusForbidden, common.ErrAdminRequired.Message)
	}
}

// AdminPageGate 관리자 화면 요청에 유효한 토큰이 없으면 로그인 페이지로 302
// 만료/위조 토큰 쿠키는 삭제, 로그인 페이지 자체는 통과
func AdminPageGate(jwtManager *jwt.Manager, cookieCfg config.CookieConfig, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == loginPath || strings.HasPrefix(path, loginPath+"/") {
			c.Next()
			return
		}

		token, err := c.Cookie(cookieCfg.Name)
		if err == nil && token != "" {
			if claims, verifyErr := jwtManager.VerifyToken(token); verifyErr == nil {
				setClaims(c, claims)
				c.Next()
				return
			}
			ClearAuthCookie(c, cookieCfg)
		}

		next := c.Request.URL.RequestURI()
		c.Redirect(http.StatusFound, loginPath+"?next="+url.QueryEscape(next))
		c.Abort()
	}
}
