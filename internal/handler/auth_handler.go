package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/config"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/middleware"
	"github.com/damoang/angple-cms/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	cookie  config.CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie}
}

// Login handles POST /api/auth/login
// token 은 httpOnly 쿠키로 설정하고 body 로도 반환
// @Summary 로그인
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "credentials"
// @Success 200 {object} common.Response{data=domain.LoginResponse}
// @Failure 401 {object} common.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}

	middleware.SetAuthCookie(c, h.cookie, resp.Token, resp.ExpiresIn)
	common.Success(c, resp)
}

// Signup handles POST /api/auth/signup
// @Summary 사용자 등록 (첫 사용자는 관리자)
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.SignupRequest true "new user"
// @Success 201 {object} common.Response{data=domain.User}
// @Failure 403 {object} common.Response
// @Failure 409 {object} common.Response
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req domain.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.service.Signup(c.Request.Context(), &req, middleware.GetClaims(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.Created(c, user)
}

// Logout handles POST /api/auth/logout
// @Summary 로그아웃
// @Tags auth
// @Produce json
// @Success 200 {object} common.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearAuthCookie(c, h.cookie)
	common.SuccessWithMessage(c, nil, "logged out")
}

// Me handles GET /api/auth/me
// @Summary 현재 사용자
// @Tags auth
// @Produce json
// @Success 200 {object} common.Response{data=domain.User}
// @Failure 401 {object} common.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	user, err := h.service.Me(c.Request.Context(), claims)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.Success(c, user)
}

// ListUsers handles GET /api/cms/:siteId/users
// @Summary 사이트 사용자 목록
// @Tags users
// @Produce json
// @Param siteId path string true "site id"
// @Success 200 {object} common.Response{data=[]domain.User}
// @Router /cms/{siteId}/users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.Success(c, users)
}
