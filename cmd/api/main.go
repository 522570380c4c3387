package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/damoang/angple-cms/internal/config"
	"github.com/damoang/angple-cms/internal/database"
	"github.com/damoang/angple-cms/internal/handler"
	"github.com/damoang/angple-cms/internal/middleware"
	"github.com/damoang/angple-cms/internal/migration"
	"github.com/damoang/angple-cms/internal/repository"
	"github.com/damoang/angple-cms/internal/routes"
	"github.com/damoang/angple-cms/internal/service"
	pkgcache "github.com/damoang/angple-cms/pkg/cache"
	pkges "github.com/damoang/angple-cms/pkg/elasticsearch"
	"github.com/damoang/angple-cms/pkg/jwt"
	pkglogger "github.com/damoang/angple-cms/pkg/logger"
	pkgredis "github.com/damoang/angple-cms/pkg/redis"
	pkgstorage "github.com/damoang/angple-cms/pkg/storage"
)

// @title           Angple CMS API
// @version         1.0
// @description     Multi-tenant headless CMS
//
// @license.name    MIT
//
// @host            localhost:8082
// @BasePath        /api
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath(env string) string {
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	env := config.AppEnv()
	dotenvFiles := config.LoadDotEnv(env)

	// 로거 초기화
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	// 설정 로드
	configPath := getConfigPath(env)
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)
	gin.SetMode(cfg.Server.Mode)

	// DB 연결 (CMS 는 DB 없이 동작할 수 없음)
	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to %s", cfg.Database.Driver)
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis 연결
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
		)
		if err != nil {
			pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
			redisClient = nil
		} else {
			pkglogger.Info("Connected to Redis")
		}
	}

	// Cache Service (nil 이면 서비스가 no-op 캐시 사용)
	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	// Elasticsearch 연결
	var esClient *pkges.Client
	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) > 0 {
		esClient, err = pkges.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password, cfg.Elasticsearch.Index)
		if err != nil {
			pkglogger.Warn("Elasticsearch connection failed: %v (falling back to database search)", err)
			esClient = nil
		}
	}

	store, err := initStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to init media storage: %v", err)
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	contentTypeRepo := repository.NewContentTypeRepository(db)
	contentRepo := repository.NewContentRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	formRepo := repository.NewFormSubmissionRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	siteContentRepo := repository.NewSiteContentRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)

	// Services
	dispatcher := service.NewWebhookDispatcher(webhookRepo, service.DispatcherConfig{
		Timeout:     time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second,
		MaxAttempts: cfg.Webhook.MaxAttempts,
		Concurrency: int64(cfg.Webhook.Concurrency),
	})
	searchService := service.NewSearchService(esClient, contentRepo)
	contentTypeService := service.NewContentTypeService(contentTypeRepo, contentRepo, cacheService)
	contentService := service.NewContentService(contentRepo, revisionRepo, contentTypeService, cacheService, dispatcher, searchService)
	authService := service.NewAuthService(userRepo, contentTypeService, jwtManager)
	formService := service.NewFormSubmissionService(formRepo, dispatcher)
	mediaService := service.NewMediaService(mediaRepo, store, cfg.Media.MaxSizeMB, cfg.Media.AllowedExts)
	siteContentService := service.NewSiteContentService(siteContentRepo, cacheService)
	webhookService := service.NewWebhookService(webhookRepo)

	// Gin 라우터 생성
	router := gin.New()
	router.Use(middleware.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowOriginList(),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining", "X-Cache"},
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Middleware
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.InputSanitizer())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	if sqlDB, dbErr := db.DB(); dbErr == nil {
		if err := middleware.RegisterDBStats(sqlDB, cfg.Database.Driver); err != nil {
			pkglogger.Warn("db stats collector: %v", err)
		}
	}

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if err := pingDB(c.Request.Context(), db); err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "down"
		}
		c.JSON(status, gin.H{
			"status":  dbStatus,
			"service": "angple-cms",
			"time":    time.Now().Unix(),
		})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Local uploads
	if _, ok := store.(*pkgstorage.LocalStorage); ok {
		router.Static(cfg.Media.BaseURL, cfg.Media.Dir)
	}

	// Admin pages (로그인 페이지 제외 쿠키 필요)
	if cfg.Admin.Dir != "" {
		adminPages := router.Group("/admin", middleware.AdminPageGate(jwtManager, cfg.Cookie, cfg.Admin.LoginPath))
		adminPages.Static("/", cfg.Admin.Dir)
	}

	routes.Setup(router, routes.Handlers{
		Auth:           handler.NewAuthHandler(authService, cfg.Cookie),
		ContentType:    handler.NewContentTypeHandler(contentTypeService),
		Content:        handler.NewContentHandler(contentService),
		FormSubmission: handler.NewFormSubmissionHandler(formService),
		Media:          handler.NewMediaHandler(mediaService),
		SiteContent:    handler.NewSiteContentHandler(siteContentService),
		Webhook:        handler.NewWebhookHandler(webhookService),
		Search:         handler.NewSearchHandler(searchService),
	}, jwtManager, cfg, redisClient)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		pkglogger.Info("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	pkglogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		pkglogger.Error("Server shutdown: %v", err)
	}

	// 진행 중인 웹훅 전송 마무리
	dispatcher.Wait()

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	pkglogger.Info("Server stopped")
}

// initStorage picks S3-compatible storage when configured, local disk otherwise
func initStorage(cfg *config.Config) (pkgstorage.Storage, error) {
	if cfg.Storage.Enabled && cfg.Storage.Bucket != "" {
		s3Client, err := pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if err != nil {
			return nil, err
		}
		pkglogger.Info("Using S3 storage (bucket=%s)", cfg.Storage.Bucket)
		return s3Client, nil
	}

	pkglogger.Info("Using local storage (%s)", cfg.Media.Dir)
	return pkgstorage.NewLocalStorage(cfg.Media.Dir, strings.TrimRight(cfg.Media.BaseURL, "/"))
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
