// Package cli provides the initialization shared by cmd/centinel,
// cmd/ledger-worker and cmd/centinelctl.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/raiyan37/Centinel/internal/config"
	"github.com/raiyan37/Centinel/internal/core"
	applog "github.com/raiyan37/Centinel/internal/log"
	"github.com/raiyan37/Centinel/internal/storage"
)

// SetupLogger builds the process logger at the LOG_LEVEL of the environment
// and installs it as the slog default. Unknown levels fall back to info.
func SetupLogger(component string) *applog.Logger {
	level, err := applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	logger := applog.NewText(os.Stdout, level, component)
	slog.SetDefault(logger.Logger)
	if err != nil {
		logger.Warn("Falling back to info logging", "error", err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig loads configuration and validates it, including the API-only
// checks when server is true.
func LoadConfig(server bool) (*config.Config, error) {
	cfg := config.Load()
	validate := cfg.Validate
	if server {
		validate = cfg.ValidateServer
	}
	if err := validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidateConfig is LoadConfig for long-running processes: it exits
// on invalid configuration.
func LoadAndValidateConfig(logger *applog.Logger, server bool) *config.Config {
	cfg, err := LoadConfig(server)
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the SQLite ledger with a clock in the configured time zone.
func OpenStore(cfg *config.Config) (*storage.SQLiteRepository, error) {
	store, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath,
		storage.WithClock(core.SystemClock(cfg.Location())))
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", cfg.SQLiteDBPath, err)
	}
	return store, nil
}

// InitSQLite is OpenStore that exits the process on failure.
func InitSQLite(logger *applog.Logger, cfg *config.Config) *storage.SQLiteRepository {
	store, err := OpenStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	return store
}

// GracefulShutdown returns a context that is cancelled on SIGINT or SIGTERM.
// cleanup runs after the signal with a context bounded by timeout, and done
// is closed once it returns.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
