package worker

import (
	"context"
	"fmt"
	"log/slog"

	"sothuchi/internal/amqp"
	"sothuchi/internal/core"
	"sothuchi/internal/sheets"
	"sothuchi/internal/storage"
)

// MirrorWorker keeps the Sheets backup in step with the SQLite ledger. It
// consumes change events from AMQP and falls back to a startup catch-up scan
// for anything published while the worker was down.
type MirrorWorker struct {
	storage   *storage.SQLiteStore
	mirror    sheets.LedgerMirror
	batchSize int
}

func NewMirrorWorker(storage *storage.SQLiteStore, mirror sheets.LedgerMirror, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleEvent processes a single ledger change event from AMQP.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	switch ev.Kind {
	case amqp.EventTransactionSync:
		return w.handleSync(ctx, ev.ID)
	case amqp.EventTransactionDelete:
		return w.handleDelete(ctx, ev)
	default:
		slog.WarnContext(ctx, "Unknown event kind, dropping", "kind", ev.Kind, "id", ev.ID)
		return nil
	}
}

func (w *MirrorWorker) handleSync(ctx context.Context, id string) error {
	slog.InfoContext(ctx, "Processing sync event", "id", id)

	tx, err := w.storage.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.mirrorTransaction(ctx, tx.ID, tx)
}

func (w *MirrorWorker) handleDelete(ctx context.Context, ev *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing delete event", "id", ev.ID)

	if err := w.mirror.DeleteRow(ctx, ev.ID); err != nil {
		return fmt.Errorf("delete mirrored row: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored deletion", "id", ev.ID)
	return nil
}

// StartupCatchUp mirrors any transactions still marked pending. Recovers from
// missed events or worker downtime; runs before consumption starts.
func (w *MirrorWorker) StartupCatchUp(ctx context.Context) error {
	pending, err := w.storage.PendingMirror(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	mirrored := 0
	failed := 0
	for _, tx := range pending {
		if err := w.mirrorTransaction(ctx, tx.ID, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction during startup",
				"id", tx.ID, "error", err)
			failed++
			continue
		}
		mirrored++
	}

	slog.InfoContext(ctx, "Startup catch-up completed",
		"total", len(pending),
		"mirrored", mirrored,
		"errors", failed)

	return nil
}

// ProcessPending mirrors a batch of pending transactions. Called periodically
// as a backup for lost AMQP messages.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingMirror(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, tx := range pending {
		if err := w.mirrorTransaction(ctx, tx.ID, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction", "id", tx.ID, "error", err)
		}
	}

	return nil
}

func (w *MirrorWorker) mirrorTransaction(ctx context.Context, id string, tx core.Transaction) error {
	ref, err := w.mirror.AppendRow(ctx, tx)
	if err != nil {
		if markErr := w.storage.MarkMirrorError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark mirror error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := w.storage.MarkMirrored(ctx, id); err != nil {
		// The mirror write itself worked, so don't fail the event.
		slog.ErrorContext(ctx, "Failed to mark as mirrored", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Mirrored transaction",
		"id", id,
		"row_ref", ref,
		"amount_vnd", tx.Amount.VND)

	return nil
}
