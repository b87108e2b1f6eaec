package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techlogistics/backend/internal/application/insight"
	"github.com/techlogistics/backend/internal/application/pipeline"
	"github.com/techlogistics/backend/internal/domain/analytics"
	"github.com/techlogistics/backend/internal/domain/cleaning"
	"github.com/techlogistics/backend/internal/domain/quality"
	"github.com/techlogistics/backend/internal/infrastructure/config"
	"github.com/techlogistics/backend/internal/infrastructure/ingest"
	"github.com/techlogistics/backend/internal/infrastructure/logger"
	"github.com/techlogistics/backend/internal/interfaces/http/handler"
	"github.com/techlogistics/backend/internal/interfaces/http/middleware"
	"github.com/techlogistics/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

//	@title			TechLogistics Data Quality API
//	@version		1.0
//	@description	Audit, cleaning and analytics service for retail logistics exports

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting TechLogistics backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Dataset contracts, with column overrides from config for exports
	// that deviate from the standard headers
	contracts := ingest.DefaultContracts().WithHeaderOverrides(
		cfg.Datasets.Inventory,
		cfg.Datasets.Transactions,
		cfg.Datasets.Feedback,
	)

	// Domain services
	auditor := quality.NewAuditor(quality.WithLogger(log))
	cleaner := cleaning.NewCleaner(
		cleaning.WithConfig(cleaning.Config{
			OutlierK:        cfg.Pipeline.OutlierMultiplier,
			DeliveryCapDays: cfg.Pipeline.DeliveryCapDays,
			PlausibleAgeMin: cfg.Pipeline.PlausibleAgeMin,
			PlausibleAgeMax: cfg.Pipeline.PlausibleAgeMax,
		}),
		cleaning.WithLogger(log),
	)
	engine := analytics.NewEngine(
		analytics.WithMinSample(cfg.Analytics.MinSample),
		analytics.WithBlindThreshold(cfg.Analytics.BlindThresholdDays),
		analytics.WithEngineLogger(log),
	)

	// Application services
	pipelineService := pipeline.NewService(contracts, auditor, cleaner, engine, log)

	insightClient := insight.NewClient(insight.ClientConfig{
		APIKey:      cfg.Insight.APIKey,
		BaseURL:     cfg.Insight.BaseURL,
		Model:       cfg.Insight.Model,
		Timeout:     cfg.Insight.Timeout,
		MaxAttempts: cfg.Insight.MaxAttempts,
		BaseDelay:   cfg.Insight.BaseDelay,
		MaxDelay:    cfg.Insight.MaxDelay,
	})
	insightService := insight.NewService(insightClient, log)

	// HTTP handlers
	pipelineHandler := handler.NewPipelineHandler(pipelineService)
	analyticsHandler := handler.NewAnalyticsHandler(pipelineService)
	insightHandler := handler.NewInsightHandler(pipelineService, insightService)
	healthHandler := handler.NewHealthHandler(cfg.App.Name, version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engineHTTP := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engineHTTP.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engineHTTP.Use(middleware.RequestID())
	engineHTTP.Use(logger.Recovery(log))
	engineHTTP.Use(logger.GinMiddleware(log))
	engineHTTP.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engineHTTP.Use(middleware.CORSWithConfig(corsConfig))

	// Dataset uploads are the largest payloads this service accepts
	engineHTTP.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Liveness probe outside API versioning
	engineHTTP.GET("/healthz", healthHandler.Check)

	// API routes
	r := router.NewRouter(engineHTTP, router.WithAPIVersion("v1"))
	r.Register(pipelineHandler).
		Register(analyticsHandler).
		Register(insightHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engineHTTP,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
