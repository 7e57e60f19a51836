package ledger

import (
	"strings"

	"sothuchi/internal/core"
)

// All is the wildcard value for the Type and Category filter fields.
const All = "ALL"

// FilterSpec narrows the transaction list. Zero-value fields (and "ALL" for
// Type/Category) mean "no constraint"; the five predicates are conjunctive.
type FilterSpec struct {
	SearchTerm string               `json:"searchTerm"`
	DateFrom   core.Date            `json:"dateFrom"`
	DateTo     core.Date            `json:"dateTo"`
	Type       core.TransactionType `json:"type"`
	Category   string               `json:"category"`
}

// Filter returns the subsequence of txs matching every predicate in spec,
// preserving input order. Date bounds compare lexically, which is exact for
// the fixed-width YYYY-MM-DD format.
func Filter(txs []core.Transaction, spec FilterSpec) []core.Transaction {
	term := strings.ToLower(strings.TrimSpace(spec.SearchTerm))

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if term != "" &&
			!strings.Contains(strings.ToLower(tx.Description), term) &&
			!strings.Contains(strings.ToLower(tx.Category), term) {
			continue
		}
		if spec.Type != "" && spec.Type != All && tx.Type != spec.Type {
			continue
		}
		if spec.Category != "" && spec.Category != All && tx.Category != spec.Category {
			continue
		}
		if spec.DateFrom != "" && tx.Date < spec.DateFrom {
			continue
		}
		if spec.DateTo != "" && tx.Date > spec.DateTo {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// FilteredTotal is the signed net of a filtered view: income adds, expense
// subtracts. May be negative.
func FilteredTotal(txs []core.Transaction) int64 {
	var total int64
	for _, tx := range txs {
		if tx.Type == core.Income {
			total += tx.Amount.VND
		} else {
			total -= tx.Amount.VND
		}
	}
	return total
}
