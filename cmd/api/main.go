package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/templo-sembrador/portal-api/api/swagger"
	"github.com/templo-sembrador/portal-api/internal/handler"
	"github.com/templo-sembrador/portal-api/internal/middleware"
	"github.com/templo-sembrador/portal-api/internal/models"
	"github.com/templo-sembrador/portal-api/internal/repository"
	"github.com/templo-sembrador/portal-api/internal/service"
	"github.com/templo-sembrador/portal-api/pkg/cache"
	"github.com/templo-sembrador/portal-api/pkg/config"
	"github.com/templo-sembrador/portal-api/pkg/database"
	"github.com/templo-sembrador/portal-api/pkg/export"
	"github.com/templo-sembrador/portal-api/pkg/logger"
	corsmiddleware "github.com/templo-sembrador/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/templo-sembrador/portal-api/pkg/middleware/requestid"
	"github.com/templo-sembrador/portal-api/pkg/storage"
)

// @title Portal Sembrador API
// @version 1.0.0
// @description Church administration portal: member directory, seminar enrollment, grading and reports
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	avatarStore, err := storage.NewAvatarStore(cfg.Storage.AvatarDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init avatar storage", "error", err)
	}

	memberRepo := repository.NewMemberRepository(db)
	eventRepo := repository.NewEventRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	validate := validator.New()

	authService := service.NewAuthService(memberRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	memberService := service.NewMemberService(memberRepo, avatarStore, validate, logr)
	eventService := service.NewEventService(eventRepo, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, eventRepo, validate, logr)
	gradingService := service.NewGradingService(enrollmentRepo, validate, logr)
	kardexService := service.NewKardexService(enrollmentRepo, memberRepo, logr)
	dashboardService := service.NewDashboardService(eventRepo, enrollmentRepo, cacheService, cfg.Dashboard.CacheTTL, logr)

	pdfRenderer := export.NewPDFRenderer(export.Letterhead{
		Name:       cfg.Institution.Name,
		Pastors:    cfg.Institution.Pastors,
		City:       cfg.Institution.City,
		School:     cfg.Institution.School,
		Department: cfg.Institution.Department,
		LogoPath:   cfg.Storage.LogoPath,
	})
	exportService := service.NewExportService(
		memberRepo, eventRepo, kardexService,
		export.NewCSVRenderer(), export.NewXLSXRenderer(), pdfRenderer,
		metricsService, logr,
	)

	authHandler := handler.NewAuthHandler(authService)
	memberHandler := handler.NewMemberHandler(memberService)
	eventHandler := handler.NewEventHandler(eventService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, dashboardService)
	gradingHandler := handler.NewGradingHandler(gradingService)
	kardexHandler := handler.NewKardexHandler(kardexService)
	exportHandler := handler.NewExportHandler(exportService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static("/static/avatars", avatarStore.Dir())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(authService))

	secured.GET("/members/me", memberHandler.Me)
	secured.PUT("/members/me", memberHandler.UpdateMe)
	secured.GET("/members/me/enrollments", enrollmentHandler.ListMine)
	secured.GET("/dashboard", dashboardHandler.Summary)
	secured.GET("/events", eventHandler.List)
	secured.GET("/events/:id", eventHandler.Get)
	secured.POST("/events/:id/enrollments/self", enrollmentHandler.SelfEnroll)

	adminOrSelf := secured.Group("")
	adminOrSelf.Use(middleware.RBAC(string(models.RoleAdmin), "SELF"))
	adminOrSelf.GET("/members/:id", memberHandler.Get)
	adminOrSelf.PUT("/members/:id", memberHandler.Update)
	adminOrSelf.POST("/members/:id/avatar", memberHandler.UploadAvatar)
	adminOrSelf.GET("/members/:id/kardex", kardexHandler.Get)
	adminOrSelf.GET("/export/members/:id/record", exportHandler.RecordCard)
	adminOrSelf.GET("/export/members/:id/kardex", exportHandler.Kardex)

	admin := secured.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/members", memberHandler.List)
	admin.POST("/members", memberHandler.Register)
	admin.PATCH("/members/:id/approval", memberHandler.SetApproval)
	admin.DELETE("/members/:id", memberHandler.Delete)
	admin.POST("/events", eventHandler.Create)
	admin.GET("/events/:id/enrollments", enrollmentHandler.Roster)
	admin.POST("/events/:id/enrollments", enrollmentHandler.Create)
	admin.DELETE("/enrollments/:id", enrollmentHandler.Delete)
	admin.PATCH("/enrollments/:id/attended", enrollmentHandler.SetAttended)
	admin.PATCH("/enrollments/:id/certified", enrollmentHandler.SetCertified)
	admin.GET("/enrollments/:id/scores", gradingHandler.GetSheet)
	admin.PUT("/enrollments/:id/scores", gradingHandler.SaveSheet)
	admin.GET("/export/directory", exportHandler.Directory)
	admin.GET("/metrics/summary", metricsHandler.Summary)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
