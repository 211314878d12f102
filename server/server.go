// Package server wires storage, services and handlers into an HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yacut/config"
	"yacut/disk"
	"yacut/handlers"
	"yacut/services"
	"yacut/storage"
	"yacut/urlgen"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Run serves until ctx is cancelled, an interrupt arrives or the listener fails.
func Run(ctx context.Context, logger *zap.Logger, cfg *config.Config) error {
	store, err := storage.Open(cfg.DatabaseURI, cfg.StorageCapacity, cfg.LogLevel, logger.Named("storage"))
	if err != nil {
		logger.Error("Failed to open storage", zap.Error(err))
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close storage", zap.Error(err))
		}
	}()

	urlHandler, err := setupURLHandler(ctx, cfg, store, logger)
	if err != nil {
		return err
	}

	router := setupRouter(urlHandler, cfg, logger)
	server := setupServer(cfg, router)

	serveErr := make(chan error, 1)
	go startServer(server, logger, serveErr)

	return waitForShutdown(ctx, server, serveErr, logger)
}

func setupURLHandler(ctx context.Context, cfg *config.Config, store storage.Storage, logger *zap.Logger) (handlers.URLHandlerInterface, error) {
	handlerCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	generator := urlgen.NewGenerator(store, cfg.ShortIDLength, cfg.ShortIDAttempts)
	urlService := services.NewURLService(store, generator)

	diskClient := disk.NewClient(cfg.DiskAPIURL, cfg.DiskTimeout, cfg.DiskAPIRPS, logger.Named("disk"))
	uploadService := services.NewUploadService(diskClient, store, generator, cfg.DiskRoot, logger.Named("upload"))
	if cfg.DiskToken == "" {
		logger.Warn("DISK_TOKEN is not set; file uploads will be rejected")
	}

	handler, err := handlers.NewURLHandler(handlerCtx, urlService, uploadService, cfg, logger)
	if err != nil {
		logger.Error("Failed to create URL handler", zap.Error(err))
		return nil, err
	}

	logger.Debug("URL handler created successfully")
	return handler, nil
}

func setupRouter(urlHandler handlers.URLHandlerInterface, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	handlers.RegisterRoutes(router, urlHandler, cfg, logger)
	return router
}

func setupServer(cfg *config.Config, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func startServer(srv *http.Server, logger *zap.Logger, serveErr chan<- error) {
	logger.Info("Starting server", zap.String("address", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", zap.Error(err))
		serveErr <- err
		return
	}
	logger.Debug("Server stopped")
}

func waitForShutdown(ctx context.Context, srv *http.Server, serveErr <-chan error, logger *zap.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received signal. Initiating server shutdown...", zap.Stringer("signal", sig))
	case <-ctx.Done():
		logger.Info("Context cancelled. Initiating server shutdown...")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server gracefully stopped")
	return nil
}
