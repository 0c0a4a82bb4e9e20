package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sarafrika/elimika-availability-api/api/swagger"
	"github.com/sarafrika/elimika-availability-api/internal/handler"
	"github.com/sarafrika/elimika-availability-api/internal/middleware"
	"github.com/sarafrika/elimika-availability-api/internal/repository"
	"github.com/sarafrika/elimika-availability-api/internal/service"
	"github.com/sarafrika/elimika-availability-api/pkg/cache"
	"github.com/sarafrika/elimika-availability-api/pkg/config"
	"github.com/sarafrika/elimika-availability-api/pkg/database"
	"github.com/sarafrika/elimika-availability-api/pkg/logger"
	corsmiddleware "github.com/sarafrika/elimika-availability-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sarafrika/elimika-availability-api/pkg/middleware/requestid"
)

// @title Elimika Availability API
// @version 1.0.0
// @description Instructor availability, schedule recurrence and session booking
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The service degrades to uncached computation without Redis.
		logr.Sugar().Warnw("redis unavailable, timeline caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	ruleRepo := repository.NewAvailabilityRuleRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	availabilitySvc := service.NewAvailabilityService(ruleRepo, bookingRepo, cacheRepo, validate, logr)
	timelineSvc := service.NewTimelineService(ruleRepo, bookingRepo, cacheRepo, metricsSvc, service.TimelineConfig{
		CacheTTL:      cfg.Timeline.CacheTTL,
		MaxWindowDays: cfg.Timeline.MaxWindowDays,
	}, logr)
	sessionSvc := service.NewSessionService(timelineSvc, bookingRepo, cacheRepo, validate, logr)
	exportSvc := service.NewExportService(timelineSvc, nil, nil, nil, logr)

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	timelineHandler := handler.NewTimelineHandler(timelineSvc, metricsSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc, metricsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/availability-rules", availabilityHandler.ListRules)
		api.POST("/availability-rules", availabilityHandler.CreateRule)
		api.GET("/availability-rules/:id", availabilityHandler.GetRule)
		api.PUT("/availability-rules/:id", availabilityHandler.UpdateRule)
		api.DELETE("/availability-rules/:id", availabilityHandler.DeleteRule)

		api.POST("/bookings", availabilityHandler.CreateBooking)
		api.DELETE("/bookings/:id", availabilityHandler.DeleteBooking)
		api.GET("/owners/:id/bookings", availabilityHandler.ListBookings)

		api.GET("/owners/:id/timeline", timelineHandler.Get)

		if cfg.Sessions.Enabled {
			api.POST("/sessions/preview", sessionHandler.Preview)
			api.POST("/sessions", sessionHandler.Commit)
		}
		if cfg.Exports.Enabled {
			api.GET("/owners/:id/schedule/export", exportHandler.Download)
		}

		api.GET("/system/metrics", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "sessions_enabled", cfg.Sessions.Enabled, "exports_enabled", cfg.Exports.Enabled)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
