package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sothuchi/internal/ai"
	aiopenai "sothuchi/internal/ai/openai"
	"sothuchi/internal/backend"
	"sothuchi/internal/cli"
	apphttp "sothuchi/internal/http"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	var collaborator ai.Collaborator
	if cfg.AIAPIKey != "" {
		client, err := aiopenai.New(aiopenai.Config{
			APIKey:         cfg.AIAPIKey,
			BaseURL:        cfg.AIBaseURL,
			Model:          cfg.AIModel,
			ReasoningModel: cfg.AIReasoningModel,
			Timeout:        cfg.AITimeout,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize AI collaborator", "error", err)
			os.Exit(1)
		}
		collaborator = client
		logger.Info("AI collaborator enabled", "model", cfg.AIModel)
	} else {
		logger.Info("AI collaborator disabled - no AI_API_KEY provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, result.Store, result.Ledger, collaborator)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting sothuchi server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
