package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"sothuchi/internal/amqp"
	"sothuchi/internal/core"
	"sothuchi/internal/store"
)

// EventPublisher is the slice of the AMQP client the service needs. Nil means
// no broker is configured (memory backend, tests).
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// LedgerService orchestrates ledger writes: persist locally first, then
// publish a change event best-effort. A dead broker never fails a write.
type LedgerService struct {
	store     store.TransactionStore
	publisher EventPublisher
}

func NewLedgerService(txStore store.TransactionStore, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     txStore,
		publisher: publisher,
	}
}

// AddTransaction validates and stores tx, then publishes a sync event.
func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validate transaction: %w", err)
	}

	id, err := s.store.AppendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publish(ctx, amqp.NewSyncEvent(id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync event",
			"id", id, "error", err)
		// Local write succeeded, the worker catches up from mirror_state.
	}

	return id, nil
}

// RemoveTransaction deletes from the store and publishes a delete event
// carrying a snapshot, since the mirror needs the row data to find it.
func (s *LedgerService) RemoveTransaction(ctx context.Context, id string) error {
	snapshot, err := s.snapshotForDelete(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.RemoveTransaction(ctx, id); err != nil {
		return fmt.Errorf("remove transaction: %w", err)
	}

	if err := s.publish(ctx, amqp.NewDeleteEvent(snapshot)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete event",
			"id", id, "error", err)
	}

	return nil
}

func (s *LedgerService) snapshotForDelete(ctx context.Context, id string) (core.Transaction, error) {
	if getter, ok := s.store.(interface {
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	}); ok {
		tx, err := getter.GetTransaction(ctx, id)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("load transaction for delete: %w", err)
		}
		return tx, nil
	}
	// Backends without point lookup still get a delete event with the id.
	return core.Transaction{ID: id}, nil
}

func (s *LedgerService) publish(ctx context.Context, ev *amqp.TransactionEvent) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping", "kind", ev.Kind)
		return nil
	}
	return s.publisher.PublishTransactionEvent(ctx, ev)
}

// Close releases the store and publisher, aggregating errors.
func (s *LedgerService) Close() error {
	var errs []error

	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if closer, ok := s.publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
