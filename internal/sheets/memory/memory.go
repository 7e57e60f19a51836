// Package memory is an in-process mirror used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"sothuchi/internal/core"
	ports "sothuchi/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ ports.LedgerMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// AppendRow stores the transaction and returns a synthetic row reference.
func (m *Mirror) AppendRow(_ context.Context, tx core.Transaction) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, tx)
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

func (m *Mirror) DeleteRow(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	// Matching the real mirror: a missing row is not an error.
	return nil
}

// Rows returns a copy of the mirrored rows, in append order.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, len(m.rows))
	copy(out, m.rows)
	return out
}
