package worker

import (
	"context"
	"path/filepath"
	"testing"

	"sothuchi/internal/amqp"
	"sothuchi/internal/core"
	"sothuchi/internal/sheets/memory"
	"sothuchi/internal/storage"
)

func newTestWorker(t *testing.T) (*MirrorWorker, *storage.SQLiteStore, *memory.Mirror) {
	t.Helper()
	st, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "sothuchi.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	mirror := memory.New()
	return NewMirrorWorker(st, mirror, 10), st, mirror
}

func TestHandleSyncEventMirrorsAndMarks(t *testing.T) {
	w, st, mirror := newTestWorker(t)
	ctx := context.Background()

	id, err := st.AppendTransaction(ctx, core.Transaction{
		Date:        "2023-11-15",
		Description: "Thiết kế web",
		Amount:      core.Money{VND: 15000000},
		Type:        core.Income,
		Category:    "Bán hàng",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := w.HandleEvent(ctx, amqp.NewSyncEvent(id)); err != nil {
		t.Fatalf("handle sync: %v", err)
	}

	rows := mirror.Rows()
	if len(rows) != 1 || rows[0].ID != id {
		t.Fatalf("mirror rows = %+v", rows)
	}

	pending, err := st.PendingMirror(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("still pending after mirror: %+v", pending)
	}
}

func TestHandleDeleteEventRemovesRow(t *testing.T) {
	w, st, mirror := newTestWorker(t)
	ctx := context.Background()

	id, _ := st.AppendTransaction(ctx, core.Transaction{
		Date: "2023-11-01", Description: "a", Amount: core.Money{VND: 1000}, Type: core.Expense, Category: "A",
	})
	if err := w.HandleEvent(ctx, amqp.NewSyncEvent(id)); err != nil {
		t.Fatalf("handle sync: %v", err)
	}

	tx, _ := st.GetTransaction(ctx, id)
	if err := st.RemoveTransaction(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := w.HandleEvent(ctx, amqp.NewDeleteEvent(tx)); err != nil {
		t.Fatalf("handle delete: %v", err)
	}

	if rows := mirror.Rows(); len(rows) != 0 {
		t.Fatalf("mirror rows after delete = %+v", rows)
	}
}

func TestStartupCatchUpMirrorsPending(t *testing.T) {
	w, st, mirror := newTestWorker(t)
	ctx := context.Background()

	for _, d := range []core.Date{"2023-11-01", "2023-11-02", "2023-11-03"} {
		if _, err := st.AppendTransaction(ctx, core.Transaction{
			Date: d, Description: "x", Amount: core.Money{VND: 1000}, Type: core.Expense, Category: "A",
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if err := w.StartupCatchUp(ctx); err != nil {
		t.Fatalf("catch-up: %v", err)
	}

	if rows := mirror.Rows(); len(rows) != 3 {
		t.Fatalf("mirror rows = %d, want 3", len(rows))
	}
	if pending, _ := st.PendingMirror(ctx, 10); len(pending) != 0 {
		t.Fatalf("pending after catch-up: %+v", pending)
	}
}

func TestUnknownEventKindDropped(t *testing.T) {
	w, _, _ := newTestWorker(t)
	ev := &amqp.TransactionEvent{Kind: "transaction.unknown", ID: "x"}
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("unknown kind should be dropped, got %v", err)
	}
}
