package backend

import (
	"context"
	"fmt"
	"log/slog"

	"sothuchi/internal/amqp"
	"sothuchi/internal/services"
	"sothuchi/internal/storage"
	"sothuchi/internal/store/memory"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	sqliteStore, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite store: %w", err)
	}

	// The publisher is optional. A dead broker degrades to catch-up mirroring,
	// it never blocks the API.
	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without mirror events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			publisher = amqpClient
		}
	}

	ledger := services.NewLedgerService(sqliteStore, publisher)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Store:   sqliteStore,
		Ledger:  ledger,
		Cleanup: ledger.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	st := memory.New()
	ledger := services.NewLedgerService(st, nil)

	f.logger.Info("Initialized memory backend")

	return &BackendResult{
		Store:  st,
		Ledger: ledger,
	}, nil
}
