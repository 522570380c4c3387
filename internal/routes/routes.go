package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/damoang/angple-cms/internal/config"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/handler"
	"github.com/damoang/angple-cms/internal/middleware"
	"github.com/damoang/angple-cms/pkg/jwt"
)

// Handlers groups every API handler
type Handlers struct {
	Auth           *handler.AuthHandler
	ContentType    *handler.ContentTypeHandler
	Content        *handler.ContentHandler
	FormSubmission *handler.FormSubmissionHandler
	Media          *handler.MediaHandler
	SiteContent    *handler.SiteContentHandler
	Webhook        *handler.WebhookHandler
	Search         *handler.SearchHandler
}

// Setup configures all API routes. redisClient may be nil (rate limiting fails open).
func Setup(router *gin.Engine, h Handlers, jwtManager *jwt.Manager, cfg *config.Config, redisClient *redis.Client) {
	api := router.Group("/api", middleware.CookieAuth(jwtManager, cfg.Cookie))
	if cfg.RateLimit.Enabled {
		rl := middleware.DefaultRateLimitConfig()
		if cfg.RateLimit.RequestsPerMinute > 0 {
			rl.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
		}
		api.Use(middleware.RateLimit(redisClient, rl))
	}

	admin := middleware.RequireRole(string(domain.RoleAdmin))
	editor := middleware.RequireRole(string(domain.RoleAdmin), string(domain.RoleEditor))

	// Auth
	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/signup", h.Auth.Signup) // 첫 사용자는 공개, 이후 관리자만
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", middleware.RequireAuth(), h.Auth.Me)

	site := api.Group("/cms/:siteId")
	member := middleware.RequireSiteAccess()

	// Content types (schema)
	types := site.Group("/content-types", member)
	types.GET("", h.ContentType.List)
	types.GET("/:contentTypeId", h.ContentType.Get)
	types.POST("", admin, h.ContentType.Create)
	types.PUT("/:contentTypeId", admin, h.ContentType.Update)
	types.DELETE("/:contentTypeId", admin, h.ContentType.Delete)
	types.POST("/:contentTypeId/validate", h.ContentType.Validate)

	// Content (공개 조회는 published 만)
	content := site.Group("/content/:contentTypeId")
	content.GET("", middleware.OptionalSiteAccess(), h.Content.List)
	content.GET("/:contentId", middleware.OptionalSiteAccess(), h.Content.Get)
	content.POST("", member, editor, h.Content.Create)
	content.PUT("/:contentId", member, editor, h.Content.Update)
	content.DELETE("/:contentId", member, editor, h.Content.Delete)
	content.GET("/:contentId/revisions", member, h.Content.Revisions)
	content.POST("/:contentId/revisions/:version/restore", member, editor, h.Content.Restore)

	// Form submissions
	forms := site.Group("/form-submissions")
	formLimit := middleware.FormRateLimitConfig(cfg.RateLimit.FormsPerMinute)
	forms.POST("", middleware.RateLimit(redisClient, formLimit), h.FormSubmission.Create)
	forms.GET("", member, h.FormSubmission.List)
	forms.POST("/bulk-status", member, editor, h.FormSubmission.BulkUpdateStatus)
	forms.GET("/:id", member, h.FormSubmission.Get)
	forms.PATCH("/:id/status", member, editor, h.FormSubmission.UpdateStatus)
	forms.DELETE("/:id", member, admin, h.FormSubmission.Delete)

	// Media
	media := site.Group("/media", member)
	media.GET("", h.Media.List)
	media.POST("", editor, h.Media.Upload)
	media.GET("/:mediaId", h.Media.Get)
	media.PATCH("/:mediaId", editor, h.Media.Update)
	media.DELETE("/:mediaId", editor, h.Media.Delete)

	// Site content
	site.GET("/site-content", h.SiteContent.Get)
	site.PUT("/site-content", member, admin, h.SiteContent.Upsert)

	// Webhooks (관리자)
	hooks := site.Group("/webhooks", member, admin)
	hooks.GET("", h.Webhook.List)
	hooks.POST("", h.Webhook.Create)
	hooks.PUT("/:webhookId", h.Webhook.Update)
	hooks.DELETE("/:webhookId", h.Webhook.Delete)

	// Search
	site.GET("/search", middleware.PublicCache(redisClient, middleware.DefaultPublicCacheConfig()), h.Search.Search)

	// Users (관리자)
	site.GET("/users", member, admin, h.Auth.ListUsers)
}
