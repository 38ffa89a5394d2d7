package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/nmby204/SGE/api/swagger"
	"github.com/nmby204/SGE/internal/authz"
	"github.com/nmby204/SGE/internal/handler"
	"github.com/nmby204/SGE/internal/middleware"
	"github.com/nmby204/SGE/internal/repository"
	"github.com/nmby204/SGE/internal/service"
	"github.com/nmby204/SGE/pkg/cache"
	"github.com/nmby204/SGE/pkg/config"
	"github.com/nmby204/SGE/pkg/database"
	"github.com/nmby204/SGE/pkg/jobs"
	"github.com/nmby204/SGE/pkg/logger"
	corsmiddleware "github.com/nmby204/SGE/pkg/middleware/cors"
	reqidmiddleware "github.com/nmby204/SGE/pkg/middleware/requestid"
	"github.com/nmby204/SGE/pkg/storage"
)

// @title SGE API
// @version 1.0.0
// @description Didactic planning management backend
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, report caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	store, err := storage.NewLocalStore(cfg.Uploads.StorageDir, cfg.Uploads.PublicBaseURL)
	if err != nil {
		logr.Fatal("failed to init upload storage", zap.Error(err))
	}

	notifier := jobs.NewQueue("calendar-notifications", service.NotificationHandler(logr), jobs.QueueConfig{
		Workers:    cfg.Calendar.NotifierWorkers,
		BufferSize: cfg.Calendar.NotifierBuffer,
		Logger:     logr,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifier.Start(ctx)
	defer notifier.Stop()

	userRepo := repository.NewUserRepository(db)
	planningRepo := repository.NewPlanningRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	reportRepo := repository.NewReportRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, nil, logr)
	planningSvc := service.NewPlanningService(planningRepo, store, nil, logr)
	evidenceSvc := service.NewEvidenceService(evidenceRepo, store, nil, logr)
	progressSvc := service.NewProgressService(progressRepo, planningRepo, nil, logr)
	reportSvc := service.NewReportService(reportRepo, progressRepo, redisClient, logr, service.ReportConfig{
		CacheEnabled: cfg.Reports.CacheEnabled,
		CacheTTL:     cfg.Reports.CacheTTL,
	})
	calendarSvc := service.NewCalendarService(calendarRepo, notifier, logr, service.CalendarConfig{
		MaxResults: cfg.Calendar.MaxResults,
		Horizon:    cfg.Calendar.Horizon,
	})
	metricsSvc := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	planningHandler := handler.NewPlanningHandler(planningSvc, metricsSvc, cfg.Uploads.MaxFileSizeBytes)
	evidenceHandler := handler.NewEvidenceHandler(evidenceSvc, metricsSvc, cfg.Uploads.MaxFileSizeBytes)
	progressHandler := handler.NewProgressHandler(progressSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		session := auth.Group("", middleware.JWT(authSvc))
		session.POST("/logout", authHandler.Logout)
		session.POST("/change-password", authHandler.ChangePassword)
		session.GET("/me", authHandler.Me)
	}

	protected := api.Group("", middleware.JWT(authSvc))

	users := protected.Group("/users", middleware.Authorize(authz.OpUserManage))
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	plannings := protected.Group("/plannings")
	{
		plannings.GET("", planningHandler.List)
		plannings.POST("", planningHandler.Create)
		plannings.GET("/:id", planningHandler.Get)
		plannings.PUT("/:id", planningHandler.Update)
		plannings.DELETE("/:id", planningHandler.Delete)
		plannings.POST("/:id/review", planningHandler.Review)
		plannings.GET("/:id/history", planningHandler.History)
		plannings.GET("/:id/progress", progressHandler.ListByPlanning)
	}

	evidences := protected.Group("/evidences")
	{
		evidences.GET("", evidenceHandler.List)
		evidences.POST("", evidenceHandler.Create)
		evidences.GET("/:id", evidenceHandler.Get)
		evidences.PUT("/:id", evidenceHandler.Update)
		evidences.DELETE("/:id", evidenceHandler.Delete)
		evidences.POST("/:id/review", evidenceHandler.Review)
	}

	progress := protected.Group("/progress")
	{
		progress.GET("", progressHandler.List)
		progress.POST("", progressHandler.Create)
		progress.GET("/stats", progressHandler.Stats)
		progress.GET("/:id", progressHandler.Get)
		progress.PUT("/:id", progressHandler.Update)
		progress.DELETE("/:id", progressHandler.Delete)
	}

	reports := protected.Group("/reports", middleware.Authorize(authz.OpReportView))
	{
		reports.GET("/compliance", reportHandler.Compliance)
		reports.GET("/progress", reportHandler.Progress)
		reports.GET("/training", reportHandler.Training)
		reports.GET("/:type/export", reportHandler.Export)
	}

	calendar := protected.Group("/calendar", middleware.Authorize(authz.OpCalendarView))
	{
		calendar.GET("/events", calendarHandler.Events)
		calendar.POST("/notify", calendarHandler.Notify)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}
