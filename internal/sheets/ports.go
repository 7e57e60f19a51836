package sheets

import (
	"context"

	"sothuchi/internal/core"
)

// Ports for the spreadsheet backup mirror.
type (
	// RowAppender mirrors a ledger transaction into the backup sheet and
	// returns a row reference for logging.
	RowAppender interface {
		AppendRow(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// RowDeleter removes a mirrored transaction. Lookup is by transaction id,
	// which the mirror stores in its own column.
	RowDeleter interface {
		DeleteRow(ctx context.Context, id string) error
	}

	// LedgerMirror is the full mirror surface the worker wires up.
	LedgerMirror interface {
		RowAppender
		RowDeleter
	}
)
