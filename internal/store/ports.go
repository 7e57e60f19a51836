// Package store defines the persistence ports. The aggregation code never
// touches a concrete backend: handlers receive these interfaces and work on
// whatever snapshot the store currently provides.
package store

import (
	"context"
	"errors"

	"sothuchi/internal/core"
)

// ErrNotFound reports a lookup or removal of an id the store does not hold.
var ErrNotFound = errors.New("record not found")

type (
	// TransactionStore is the ledger's single writer of truth. List returns
	// the full collection most-recent-first by date; no pagination.
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		// AppendTransaction stores tx, assigning and returning a fresh id.
		// Any id already present on tx is ignored.
		AppendTransaction(ctx context.Context, tx core.Transaction) (string, error)
		RemoveTransaction(ctx context.Context, id string) error
	}

	InvoiceStore interface {
		ListInvoices(ctx context.Context) ([]core.InvoiceData, error)
		AppendInvoice(ctx context.Context, inv core.InvoiceData) (string, error)
	}

	// BankStore holds imported bank statement lines and their analysis state.
	BankStore interface {
		ListBankTransactions(ctx context.Context) ([]core.BankTransaction, error)
		GetBankTransaction(ctx context.Context, id string) (core.BankTransaction, error)
		ImportBankTransactions(ctx context.Context, txs []core.BankTransaction) error
		SaveBankSuggestion(ctx context.Context, id string, s core.BankSuggestion) error
		SetBankStatus(ctx context.Context, id string, status core.BankStatus) error
	}

	ContractStore interface {
		ListContracts(ctx context.Context) ([]core.Contract, error)
		AppendContract(ctx context.Context, c core.Contract) (string, error)
	}

	// Notifier pushes change notifications to interested readers. Callbacks
	// fire after a successful write; subscribers re-read through the store
	// rather than receiving the changed record.
	Notifier interface {
		Subscribe(fn func()) (cancel func())
	}

	// Store bundles every port for wiring at the edges.
	Store interface {
		TransactionStore
		InvoiceStore
		BankStore
		ContractStore
		Notifier
	}
)
