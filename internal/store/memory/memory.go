// Package memory is the in-process backend: the offline mode. Everything
// lives in mutex-guarded slices and disappears on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"sothuchi/internal/core"
	"sothuchi/internal/store"
)

type Store struct {
	store.Hub

	mu           sync.RWMutex
	transactions []core.Transaction
	invoices     []core.InvoiceData
	bank         []core.BankTransaction
	contracts    []core.Contract
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Seed preloads fixtures without firing change notifications. Intended for
// demo mode and tests.
func (s *Store) Seed(txs []core.Transaction, bank []core.BankTransaction, contracts []core.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		s.transactions = append(s.transactions, tx)
	}
	s.bank = append(s.bank, bank...)
	s.contracts = append(s.contracts, contracts...)
	s.sortTransactionsLocked()
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out, nil
}

func (s *Store) AppendTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	s.mu.Lock()
	tx.ID = uuid.NewString()
	s.transactions = append(s.transactions, tx)
	s.sortTransactionsLocked()
	s.mu.Unlock()

	s.Notify()
	return tx.ID, nil
}

func (s *Store) RemoveTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	for i, tx := range s.transactions {
		if tx.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return store.ErrNotFound
	}
	s.Notify()
	return nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]core.InvoiceData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.InvoiceData, len(s.invoices))
	copy(out, s.invoices)
	return out, nil
}

func (s *Store) AppendInvoice(ctx context.Context, inv core.InvoiceData) (string, error) {
	s.mu.Lock()
	inv.ID = uuid.NewString()
	s.invoices = append(s.invoices, inv)
	s.mu.Unlock()

	s.Notify()
	return inv.ID, nil
}

func (s *Store) ListBankTransactions(ctx context.Context) ([]core.BankTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.BankTransaction, len(s.bank))
	copy(out, s.bank)
	return out, nil
}

func (s *Store) GetBankTransaction(ctx context.Context, id string) (core.BankTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.bank {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.BankTransaction{}, store.ErrNotFound
}

func (s *Store) ImportBankTransactions(ctx context.Context, txs []core.BankTransaction) error {
	s.mu.Lock()
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if tx.Status == "" {
			tx.Status = core.BankNew
		}
		s.bank = append(s.bank, tx)
	}
	s.mu.Unlock()

	s.Notify()
	return nil
}

func (s *Store) SaveBankSuggestion(ctx context.Context, id string, suggestion core.BankSuggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bank {
		if s.bank[i].ID == id {
			s.bank[i].Suggestion = &suggestion
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) SetBankStatus(ctx context.Context, id string, status core.BankStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bank {
		if s.bank[i].ID == id {
			s.bank[i].Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListContracts(ctx context.Context) ([]core.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Contract, len(s.contracts))
	copy(out, s.contracts)
	return out, nil
}

func (s *Store) AppendContract(ctx context.Context, c core.Contract) (string, error) {
	s.mu.Lock()
	c.ID = uuid.NewString()
	s.contracts = append(s.contracts, c)
	s.mu.Unlock()

	s.Notify()
	return c.ID, nil
}

// sortTransactionsLocked keeps the slice most-recent-first. Stable so that
// same-day records keep insertion order.
func (s *Store) sortTransactionsLocked() {
	sort.SliceStable(s.transactions, func(i, j int) bool {
		return s.transactions[i].Date > s.transactions[j].Date
	})
}
