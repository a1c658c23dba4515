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

	"recoInsight/app/echo-server/router"
	"recoInsight/business/insight"
	"recoInsight/business/recommend"
	"recoInsight/business/similarity"
	"recoInsight/business/strategy"
	"recoInsight/internal/middleware"
	psqlRepo "recoInsight/internal/repository/postgres"
	redisRepo "recoInsight/internal/repository/redis"
	"recoInsight/internal/rest"
	"recoInsight/pkg/config"
	"recoInsight/pkg/database"
	redisClient "recoInsight/pkg/database/redis"
	"recoInsight/pkg/logger"
	"recoInsight/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const cachePrefix = "recoinsight"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Reco Insight", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	logger.Info("Database connected successfully")

	// Directive cache is optional
	var cache insight.DirectiveCache
	if cfg.Redis.Enabled {
		rdb, err := redisClient.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer redisClient.CloseRedisClient(rdb)
		cache = redisRepo.NewDirectiveRepository(rdb, cachePrefix)
		logger.Info("Redis connected successfully")
	}

	// Init strategy engine from env; a persisted config replaces it below
	table, err := strategy.ParseDecisionTable(cfg.Strategy.DecisionTable)
	if err != nil {
		logger.Fatal("Invalid decision table", err)
	}
	engine, err := strategy.NewEngine(strategy.Config{
		Thresholds: strategy.Thresholds{High: cfg.Strategy.HighThreshold, Medium: cfg.Strategy.MediumThreshold},
		Table:      table,
		Revision:   1,
	})
	if err != nil {
		logger.Fatal("Invalid strategy config", err)
	}

	// Init repo
	interactionRepo := psqlRepo.NewInteractionRepository(db)
	similarityRepo := psqlRepo.NewSimilarityRepository(db)
	strategyRepo := psqlRepo.NewStrategyConfigRepository(db)

	// Init service
	insightService := insight.NewService(interactionRepo, similarityRepo, strategyRepo, cache, engine, insight.Options{
		Similarity: similarity.Options{
			RatingMin:  cfg.Similarity.RatingMin,
			RatingMax:  cfg.Similarity.RatingMax,
			MinSupport: cfg.Similarity.MinSupport,
			Workers:    cfg.Similarity.Workers,
		},
		Recommend: recommend.Options{
			FallbackThreshold: cfg.Recommend.FallbackThreshold,
			RecentItems:       cfg.Recommend.RecentItems,
		},
		DefaultK:     cfg.Recommend.DefaultK,
		MaxK:         cfg.Recommend.MaxK,
		DirectiveTTL: cfg.Redis.DirectiveTTL,
		ConfigName:   insight.DefaultConfigName,
	})

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	if err := insightService.LoadStrategyConfig(startupCtx); err != nil {
		logger.Fatal("Failed to load strategy config", err)
	}
	if cfg.App.RebuildOnStart {
		if _, err := insightService.Rebuild(startupCtx); err != nil {
			// an empty store is expected on a fresh install
			logger.Warn("Initial similarity rebuild failed", err)
		}
	}
	cancelStartup()

	// Init handler
	recommendationHandler := rest.NewRecommendationHandler(insightService, cfg.Server.RequestTimeout)
	ratingHandler := rest.NewRatingHandler(insightService, cfg.Server.RequestTimeout)
	similarityHandler := rest.NewSimilarityHandler(insightService, 5*time.Minute)
	strategyAdminHandler := rest.NewStrategyAdminHandler(insightService, cfg.Server.RequestTimeout)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":   "ok",
			"snapshot": insightService.Status(),
		})
	})

	// Auth middleware
	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetRecommendationRoutes(api, recommendationHandler)
	router.SetRatingRoutes(api, ratingHandler)
	router.SetSimilarityRoutes(api, similarityHandler, authRequired, adminOnly)
	router.SetStrategyAdminRoutes(api, strategyAdminHandler, authRequired, adminOnly)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", err)
	}

	logger.Info("Server stopped")
}
