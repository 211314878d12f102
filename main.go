package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"yacut/config"
	"yacut/logging"
	"yacut/server"
	"yacut/storage"
)

// loadConfig parses command-line flags and loads the configuration they point at.
func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("yacut", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	port := fs.String("port", "", "Listen address, overrides SERVER_PORT (e.g. :8080)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *port != "" {
		cfg.ServerPort = *port
	}
	return cfg, nil
}

// logStartup records the effective settings. Secrets are never logged.
func logStartup(logger *zap.Logger, cfg *config.Config) {
	logger.Info("Starting URL Shortener application...",
		zap.String("address", cfg.ServerPort),
		zap.String("database", storage.RedactDSN(cfg.DatabaseURI)),
		zap.Bool("disk_configured", cfg.DiskToken != ""))
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logStartup(logger, cfg)
	if err := server.Run(context.Background(), logger, cfg); err != nil {
		logger.Fatal("Application error", zap.Error(err))
	}
	logger.Info("URL Shortener application stopped.")
}
