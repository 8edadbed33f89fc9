package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ferrgo/kestrel/internal/analytics"
	"github.com/ferrgo/kestrel/internal/config"
	"github.com/ferrgo/kestrel/internal/database"
	"github.com/ferrgo/kestrel/internal/handler"
	"github.com/ferrgo/kestrel/internal/privacy"
	"github.com/ferrgo/kestrel/internal/scheduler"
	"github.com/ferrgo/kestrel/internal/service"
	"github.com/ferrgo/kestrel/internal/watchdog"
	"github.com/ferrgo/kestrel/pkg/middleware"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	config.InitLogger(cfg)

	slog.Info("Starting Kestrel Compliance Service", "version", version)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to MongoDB
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			slog.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	// Create indexes
	if err := database.CreateIndexes(ctx, db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	checkpointRepo := database.NewCheckpointRepository(db)
	alertRepo := database.NewAlertRepository(db)
	policyRepo := database.NewPolicyRepository(db)
	serviceLogRepo := database.NewServiceLogRepository(db)
	lockRepo := database.NewLockRepository(db)

	// Initialize analytics mirror and privacy filter
	var sink analytics.Sink = analytics.NoopSink{}
	if cfg.WarehouseURL != "" {
		sink = analytics.NewWarehouseSink(cfg.WarehouseURL, cfg.WarehouseTimeout)
	}
	sanitizer := privacy.NewRedactor(cfg.MirrorRetainPaths)

	// Initialize services
	checkpointService := service.NewCheckpointService(checkpointRepo)
	alertService := service.NewAlertService(alertRepo)
	policyService := service.NewPolicyService(policyRepo, cfg.DefaultSLAHours)
	verificationService := service.NewVerificationService(checkpointRepo, serviceLogRepo, sanitizer, sink)

	// Initialize watchdog
	dog := watchdog.New(
		checkpointRepo,
		alertRepo,
		policyRepo,
		time.Duration(cfg.DefaultSLAHours)*time.Hour,
		watchdog.Limits{
			DedupChunkSize:  cfg.DedupChunkSize,
			BatchWriteLimit: cfg.BatchWriteLimit,
		},
		cfg.AlertSeverity,
	)

	// Initialize scheduler
	sched := scheduler.NewScheduler(cfg, dog, lockRepo)
	if err := sched.Start(ctx); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	checkpointHandler := handler.NewCheckpointHandler(checkpointService, verificationService)
	alertHandler := handler.NewAlertHandler(alertService)
	policyHandler := handler.NewPolicyHandler(policyService)
	watchdogHandler := handler.NewWatchdogHandler(sched)
	healthHandler := handler.NewHealthHandler(db, version)

	// Create CORS config
	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	}

	// Create router
	router := handler.NewRouter(
		checkpointHandler,
		alertHandler,
		policyHandler,
		watchdogHandler,
		healthHandler,
		corsConfig,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Received shutdown signal, initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop scheduler first (wait for in-flight sweep)
	slog.Info("Stopping scheduler...")
	sched.Stop(shutdownCtx)

	// Shutdown HTTP server
	slog.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Kestrel Compliance Service stopped")
}
