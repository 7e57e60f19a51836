// Package cli holds the initialization steps shared by cmd/sothuchi and
// cmd/sothuchi-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"sothuchi/internal/config"
	"sothuchi/internal/storage"
)

// SetupLogger configures structured logging and installs it as the default.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. Missing files are fine; in
// containers the environment is set directly.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads the configuration or exits on validation
// failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite store or exits on failure.
func InitSQLite(logger *slog.Logger, dbPath string) *storage.SQLiteStore {
	st, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return st
}
