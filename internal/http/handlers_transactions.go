package http

import (
	"log/slog"
	"net/http"
	"strings"

	"sothuchi/internal/core"
	"sothuchi/internal/export"
	"sothuchi/internal/ledger"
)

// filterFromQuery maps the list endpoints' query parameters onto a FilterSpec.
// Absent parameters stay zero, meaning no constraint.
func filterFromQuery(r *http.Request) ledger.FilterSpec {
	q := r.URL.Query()
	return ledger.FilterSpec{
		SearchTerm: q.Get("search"),
		DateFrom:   core.Date(q.Get("from")),
		DateTo:     core.Date(q.Get("to")),
		Type:       core.TransactionType(q.Get("type")),
		Category:   q.Get("category"),
	}
}

type transactionListResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Total        int64              `json:"total"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list transactions")
		return
	}

	filtered := ledger.Filter(txs, filterFromQuery(r))
	writeJSON(w, http.StatusOK, transactionListResponse{
		Transactions: filtered,
		Total:        ledger.FilteredTotal(filtered),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := s.ledger.AddTransaction(r.Context(), tx)
	if err != nil {
		if isValidationError(err) || strings.Contains(err.Error(), "validate transaction") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeStoreError(w, r, err, "create transaction")
		return
	}

	tx.ID = id
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	if err := s.ledger.RemoveTransaction(r.Context(), id); err != nil {
		writeStoreError(w, r, err, "delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list transactions")
		return
	}
	writeJSON(w, http.StatusOK, ledger.Summarize(txs))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	granularity := ledger.Granularity(r.URL.Query().Get("granularity"))
	if granularity == "" {
		granularity = ledger.Monthly
	}
	if err := granularity.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.transactions(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list transactions")
		return
	}

	buckets, skipped := ledger.TrendBuckets(txs, granularity)
	if len(skipped) > 0 {
		slog.WarnContext(r.Context(), "Transactions skipped from trend, invalid dates",
			"count", len(skipped))
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list transactions")
		return
	}

	categories := ledger.Categories(txs)
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list transactions")
		return
	}
	writeJSON(w, http.StatusOK, ledger.CategoryTotals(txs))
}

// handleExport downloads the (optionally filtered) ledger as CSV or an Excel
// HTML workbook, selected by format=csv|excel.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list transactions")
		return
	}
	filtered := ledger.Filter(txs, filterFromQuery(r))

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		w.Header().Set("Content-Type", export.CSVContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="so-thu-chi.csv"`)
		_, _ = w.Write([]byte(export.TransactionsCSV(filtered)))
	case "excel":
		w.Header().Set("Content-Type", export.ExcelContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="so-thu-chi.xls"`)
		_, _ = w.Write([]byte(export.TransactionsExcelHTML(filtered)))
	default:
		writeError(w, http.StatusBadRequest, "unknown export format")
	}
}
