// Package backend builds the configured persistence stack: the store, the
// optional AMQP publisher, and the ledger service on top of both.
package backend

import (
	"context"

	"sothuchi/internal/services"
	"sothuchi/internal/store"
)

type CleanupFunc func() error

// BackendResult is the assembled stack. Cleanup may be nil.
type BackendResult struct {
	Store   store.Store
	Ledger  *services.LedgerService
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds backend construction settings, already validated.
type Config struct {
	Type BackendType

	SQLiteDBPath string

	// AMQP mirror events, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}
