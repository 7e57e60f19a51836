package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sothuchi/internal/amqp"
	"sothuchi/internal/cli"
	"sothuchi/internal/sheets/google"
	"sothuchi/internal/worker"
)

const amqpConnectAttempts = 5

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting sothuchi-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("Mirror worker needs GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("Mirror worker needs AMQP_URL")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqliteStore := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteStore.Close()

	mirror, err := google.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	// The worker usually races the broker container at startup, so retry.
	amqpClient, err := amqp.NewClientWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpConnectAttempts)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(sqliteStore, mirror, cfg.MirrorBatchSize)

	// Anything written while the worker was down is still pending.
	if err := mirrorWorker.StartupCatchUp(ctx); err != nil {
		logger.Error("Startup catch-up failed", "error", err)
		// Keep going, the periodic pass retries.
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeTransactionEvents(ctx, mirrorWorker.HandleEvent)
	})

	// Periodic sweep for events lost between broker restarts.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.MirrorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := mirrorWorker.ProcessPending(ctx); err != nil {
					logger.Error("Periodic mirror pass failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
