package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/coinshelf/internal/api"
	"github.com/dom/coinshelf/internal/catalog"
	"github.com/dom/coinshelf/internal/config"
	"github.com/dom/coinshelf/internal/logger"
	"github.com/dom/coinshelf/internal/mail"
	"github.com/dom/coinshelf/internal/metrics"
	"github.com/dom/coinshelf/internal/pricing"
	"github.com/dom/coinshelf/internal/repository/postgres"
	"github.com/dom/coinshelf/internal/service"
	"github.com/dom/coinshelf/internal/storage"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Options{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
		File:        cfg.LogFile,
	}); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync()

	// Initialize database
	gormLevel := gormlogger.Warn
	if cfg.IsProduction() {
		gormLevel = gormlogger.Error
	}
	db, err := postgres.NewConnection(cfg.DatabaseURL, gormLevel)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	repos := postgres.NewRepositories(db)

	m := metrics.New()

	// External collaborators
	ext := service.External{
		Mailer:  mail.New(cfg, m.MailSent),
		Prices:  pricing.NewDefaultAggregator(cfg, m),
		Catalog: catalog.NewClient(&http.Client{Timeout: 10 * time.Second}, cfg.NumistaBaseURL, cfg.NumistaAPIKey),
		Images:  storage.NewImageStore(cfg),
	}
	if !cfg.MailEnabled() {
		logger.Log.Warn("mailgun is not configured, emails will not be sent")
	}
	if cfg.NumistaAPIKey == "" {
		logger.Log.Info("numista api key not set, catalog search disabled")
	}
	if !cfg.StorageEnabled() {
		logger.Log.Info("s3 bucket not set, image uploads disabled")
	}

	services := service.NewServices(repos, cfg, ext)
	router := api.NewRouter(services, m, cfg)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case sig := <-quit:
		logger.Log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Log.Info("server stopped")
	return nil
}
