package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/damoang/angple-cms/internal/config"
	"github.com/damoang/angple-cms/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// context keys
const (
	ctxClaims        = "claims"
	ctxUserID        = "userID"
	ctxSiteID        = "siteID"
	ctxRole          = "role"
	ctxAuthenticated = "authenticated"
	ctxTokenExpired  = "tokenExpired"
)

// CookieAuth - authToken 쿠키 또는 Bearer 토큰에서 인증 정보 추출
// 인증 실패해도 요청을 계속 진행 (optional auth)
// 쿠키 → Bearer 토큰 순서로 검증, 잘못된 쿠키는 삭제
func CookieAuth(jwtManager *jwt.Manager, cookieCfg config.CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 쿠키
		if token, err := c.Cookie(cookieCfg.Name); err == nil && token != "" {
			claims, verifyErr := jwtManager.VerifyToken(token)
			if verifyErr == nil {
				setClaims(c, claims)
				c.Next()
				return
			}
			c.Set(ctxTokenExpired, errors.Is(verifyErr, jwt.ErrExpiredToken))
			ClearAuthCookie(c, cookieCfg)
		}

		// 2. Bearer 토큰
		if token := bearerToken(c); token != "" {
			claims, verifyErr := jwtManager.VerifyToken(token)
			if verifyErr == nil {
				setClaims(c, claims)
				c.Next()
				return
			}
			c.Set(ctxTokenExpired, errors.Is(verifyErr, jwt.ErrExpiredToken))
		}

		// 비로그인 상태로 진행
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ctxClaims, claims)
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxSiteID, claims.SiteID)
	c.Set(ctxRole, claims.Role)
	c.Set(ctxAuthenticated, true)
}

// SetAuthCookie writes the httpOnly token cookie
func SetAuthCookie(c *gin.Context, cfg config.CookieConfig, token string, maxAge int) {
	c.SetSameSite(sameSite(cfg.SameSite))
	c.SetCookie(cfg.Name, token, maxAge, "/", cfg.Domain, cfg.Secure, true)
}

// ClearAuthCookie expires the token cookie
func ClearAuthCookie(c *gin.Context, cfg config.CookieConfig) {
	c.SetSameSite(sameSite(cfg.SameSite))
	c.SetCookie(cfg.Name, "", -1, "/", cfg.Domain, cfg.Secure, true)
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// GetClaims returns the verified token claims, nil when anonymous
func GetClaims(c *gin.Context) *jwt.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetSiteID extracts the token's site from context
func GetSiteID(c *gin.Context) string {
	return c.GetString(ctxSiteID)
}

// GetRole extracts the token's role from context
func GetRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

// IsAuthenticated checks if a valid token was presented
func IsAuthenticated(c *gin.Context) bool {
	return c.GetBool(ctxAuthenticated)
}
