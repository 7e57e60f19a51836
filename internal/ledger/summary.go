// Package ledger holds the pure aggregation functions over the transaction
// collection: financial summary, category totals, time-bucketed trends and
// filtered views. Every function is stateless and safe to re-run on any
// snapshot the store hands out; the store stays the single source of truth.
package ledger

import "sothuchi/internal/core"

// Summarize computes the running income/expense/net totals. Input order is
// irrelevant; an empty ledger yields the zero summary.
func Summarize(txs []core.Transaction) core.FinancialSummary {
	var s core.FinancialSummary
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			s.TotalIncome += tx.Amount.VND
		case core.Expense:
			s.TotalExpense += tx.Amount.VND
		}
	}
	s.NetProfit = s.TotalIncome - s.TotalExpense
	return s
}

// CategoryTotals maps each category name to its total EXPENSE amount. Income
// is excluded and categories with no expenses do not appear at all, so a
// proportional breakdown never has to render zero slices.
func CategoryTotals(txs []core.Transaction) map[string]int64 {
	totals := make(map[string]int64)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		totals[tx.Category] += tx.Amount.VND
	}
	return totals
}

// Categories returns the distinct category names in first-seen order, for
// filter dropdowns and AI prompt context.
func Categories(txs []core.Transaction) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tx := range txs {
		if _, ok := seen[tx.Category]; ok {
			continue
		}
		seen[tx.Category] = struct{}{}
		out = append(out, tx.Category)
	}
	return out
}
