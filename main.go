package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipstation/bubble-tea-pos-api/config"
	"github.com/sipstation/bubble-tea-pos-api/middleware"
	"github.com/sipstation/bubble-tea-pos-api/models"
	"github.com/sipstation/bubble-tea-pos-api/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Bubble Tea POS API server...", zap.String("env", cfg.GoEnv))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.OpenDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}()

	if err := models.AutoMigrate(db, cfg.UsageTracking); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migration completed successfully", zap.Bool("usage_tracking", cfg.UsageTracking))

	seed := services.SeedOptions{InitialManager: cfg.InitialManager, SampleMenu: !cfg.IsProduction()}
	if err := services.Seed(ctx, db, seed, logger); err != nil {
		logger.Fatal("Failed to seed database", zap.Error(err))
	}

	var images services.ImageService
	if cfg.ImageStorageEnabled() {
		store, err := services.NewS3Store(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize image storage", zap.Error(err))
		}
		images = services.NewImageService(store)
	} else {
		logger.Warn("AWS_S3_BUCKET or credentials not set, menu image upload is disabled")
	}

	var verifier middleware.TokenVerifier = middleware.DisabledVerifier{}
	if cfg.GoogleClientID != "" {
		v, err := middleware.NewGoogleVerifier(cfg.GoogleClientID)
		if err != nil {
			logger.Fatal("Failed to set up token verification", zap.Error(err))
		}
		verifier = v
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, manager routes will reject every request")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(dependencies{
		cfg:      cfg,
		db:       db,
		logger:   logger,
		verifier: verifier,
		images:   images,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server is running", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}
