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

	"profileHub/app/echo-server/router"
	"profileHub/business/analytics"
	"profileHub/business/event"
	"profileHub/business/profile"
	"profileHub/business/recommendation"
	"profileHub/business/scheduler"
	"profileHub/business/segmentation"
	"profileHub/business/tag"
	"profileHub/internal/middleware"
	psqlRepo "profileHub/internal/repository/postgres"
	redisRepo "profileHub/internal/repository/redis"
	"profileHub/internal/rest"
	"profileHub/pkg/config"
	"profileHub/pkg/database"
	"profileHub/pkg/lock"
	"profileHub/pkg/logger"
	"profileHub/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Profile Hub", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	redisClient, err := database.InitRedis(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	logger.Info("Redis connected successfully")

	metrics.Init()

	// Init repo
	eventRepo := psqlRepo.NewEventRepository(db)
	profileRepo := psqlRepo.NewProfileRepository(db)
	segmentRepo := psqlRepo.NewSegmentRepository(db)
	tagRepo := psqlRepo.NewTagRepository(db)
	profileCache := redisRepo.NewProfileCache(redisClient, time.Duration(cfg.Cache.ProfileTTLSeconds)*time.Second)

	// Init service
	scoringEngine := profile.NewScoringEngine()
	eventService := event.NewEventService(eventRepo)
	analyticsService := analytics.NewAnalyticsService(eventRepo)
	profileService := profile.NewProfileService(profileRepo, profileCache, scoringEngine)
	segmentationService := segmentation.NewSegmentationService(segmentRepo, profileRepo, analyticsService)
	recommendationService := recommendation.NewRecommendationService(profileRepo, eventRepo, analyticsService)
	tagService := tag.NewTagService(tagRepo)

	// Scheduled jobs run under a redis lease so only one instance executes
	if cfg.Scheduler.Enabled {
		locker := lock.NewRedisLocker(redisClient)
		jobs := scheduler.NewScheduler(locker, eventRepo, profileService, analyticsService, segmentationService, tagService)
		if err := jobs.Start(); err != nil {
			logger.Fatal("Failed to start scheduler", "error", err)
		}
		defer jobs.Stop()
	}

	// Init handler
	eventHandler := rest.NewEventHandler(eventService)
	profileHandler := rest.NewProfileHandler(profileService)
	analyticsHandler := rest.NewAnalyticsHandler(analyticsService)
	segmentHandler := rest.NewSegmentHandler(segmentationService)
	recommendationHandler := rest.NewRecommendationHandler(recommendationService)
	tagHandler := rest.NewTagHandler(tagService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.Trace())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupEventRoutes(api, eventHandler)
	router.SetupProfileRoutes(api, profileHandler)
	router.SetupAnalyticsRoutes(api, analyticsHandler)
	router.SetupSegmentRoutes(api, segmentHandler)
	router.SetupRecommendationRoutes(api, recommendationHandler)
	router.SetupTagRoutes(api, tagHandler)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
	logger.Sync()
}
