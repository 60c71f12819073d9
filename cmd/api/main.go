package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/acadops/calendar-api/api/swagger"
	"github.com/acadops/calendar-api/internal/handler"
	"github.com/acadops/calendar-api/internal/middleware"
	"github.com/acadops/calendar-api/internal/models"
	"github.com/acadops/calendar-api/internal/notify"
	"github.com/acadops/calendar-api/internal/repository"
	"github.com/acadops/calendar-api/internal/service"
	"github.com/acadops/calendar-api/pkg/cache"
	"github.com/acadops/calendar-api/pkg/config"
	"github.com/acadops/calendar-api/pkg/database"
	"github.com/acadops/calendar-api/pkg/jobs"
	"github.com/acadops/calendar-api/pkg/logger"
	corsmiddleware "github.com/acadops/calendar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadops/calendar-api/pkg/middleware/requestid"
	"github.com/acadops/calendar-api/pkg/storage"
)

// @title Academic Calendar API
// @version 1.0.0
// @description Event scheduling, approval workflow and calendar grid rendering
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}

	// repositories
	eventRepo := repository.NewEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// services
	bus := notify.NewBus(logr)
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "calendar-api",
	})
	eventSvc := service.NewEventService(eventRepo, bus, nil, logr)
	calendarSvc := service.NewCalendarService(eventRepo, cacheRepo, metricsSvc, cfg.Calendar, logr)
	exportSvc := service.NewExportService(eventRepo, exportStore, service.ExportConfig{
		ResultTTL: cfg.Exports.ResultTTL,
	}, logr, nil, nil)
	importSvc := service.NewImportService(studentRepo, userRepo, service.ImportConfig{
		MaxFileSizeBytes: cfg.Imports.MaxFileSizeBytes,
		MaxRows:          cfg.Imports.MaxRows,
	}, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	go calendarSvc.WatchChanges(ctx, changes)

	cleanupQueue := jobs.NewQueue("export-cleanup", func(ctx context.Context, job jobs.Job) error {
		deleted, err := exportSvc.Cleanup(0)
		if err != nil {
			return err
		}
		if len(deleted) > 0 {
			logr.Sugar().Infow("cleaned up stale exports", "count", len(deleted))
		}
		return nil
	}, jobs.QueueConfig{Workers: 1, Logger: logr})
	cleanupQueue.Start(ctx)
	defer cleanupQueue.Stop()
	go scheduleCleanup(ctx, cleanupQueue, cfg.Exports.CleanupInterval, logr)

	// handlers
	authHandler := handler.NewAuthHandler(authSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	studentHandler := handler.NewStudentHandler(importSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	events := api.Group("/events", middleware.JWT(authSvc))
	events.GET("", eventHandler.List)
	events.GET("/my", eventHandler.ListMine)
	events.GET("/:id", eventHandler.Get)
	events.POST("", middleware.RequireRoles(models.RoleAcademicAssistant, models.RoleDepartmentAssistant, models.RoleAdmin), eventHandler.Create)
	events.PUT("/:id", eventHandler.Update)
	events.DELETE("/:id", eventHandler.Delete)
	events.POST("/:id/approve", middleware.RequireRoles(models.RoleDepartmentAssistant, models.RoleAdmin), eventHandler.Approve)
	events.POST("/:id/reject", middleware.RequireRoles(models.RoleDepartmentAssistant, models.RoleAdmin), eventHandler.Reject)

	calendar := api.Group("/calendar", middleware.JWT(authSvc))
	calendar.GET("/view", calendarHandler.View)
	calendar.GET("/shift", calendarHandler.Shift)
	calendar.GET("/export", exportHandler.Download)

	students := api.Group("/students", middleware.JWT(authSvc))
	students.POST("/bulk-upload", middleware.RequireRoles(models.RoleDepartmentAssistant, models.RoleAdmin), studentHandler.BulkUpload)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func scheduleCleanup(ctx context.Context, queue *jobs.Queue, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job := jobs.Job{ID: uuid.NewString(), Type: "export-cleanup"}
			if err := queue.Enqueue(job); err != nil {
				logr.Sugar().Warnw("failed to enqueue export cleanup", "error", err)
			}
		}
	}
}
