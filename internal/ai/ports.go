package ai

import (
	"context"

	"sothuchi/internal/core"
	"sothuchi/internal/recon"
)

// Ports for the generative-AI collaborator. Implementations are best-effort
// external systems: callers treat every numeric field in their output as
// untrusted and recompute what they can (see internal/recon).
type (
	CategoryPredictor interface {
		PredictCategory(ctx context.Context, description string) (core.CategoryPrediction, error)
	}

	InvoiceExtractor interface {
		// ExtractInvoice reads a base64-encoded invoice image and returns the
		// structured fields it could recognize.
		ExtractInvoice(ctx context.Context, imageBase64, mimeType string) (core.InvoiceData, error)
	}

	BankAnalyzer interface {
		// AnalyzeBankTransaction suggests how to book a statement line.
		// Implementations return an IGNORE suggestion instead of an error when
		// the collaborator is unreachable.
		AnalyzeBankTransaction(ctx context.Context, description string, amount int64, flow core.BankFlow) (core.BankSuggestion, error)
	}

	ContractMatcher interface {
		// MatchBankToContracts pairs incoming bank credits with open
		// contracts. The raw results must go through recon.Normalize before
		// anything is shown to a user.
		MatchBankToContracts(ctx context.Context, credits []core.BankTransaction, contracts []core.Contract) ([]recon.RawResult, error)
	}

	Reporter interface {
		GenerateReport(ctx context.Context, txs []core.Transaction) (string, error)
		Advise(ctx context.Context, txs []core.Transaction, query string) (string, error)
	}

	// Collaborator bundles the full surface for callers that need all of it.
	Collaborator interface {
		CategoryPredictor
		InvoiceExtractor
		BankAnalyzer
		ContractMatcher
		Reporter
	}
)
