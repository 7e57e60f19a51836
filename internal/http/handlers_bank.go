package http

import (
	"log/slog"
	"net/http"

	"sothuchi/internal/core"
)

func (s *Server) handleListBankTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.store.ListBankTransactions(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list bank transactions")
		return
	}
	if txs == nil {
		txs = []core.BankTransaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

type importBankRequest struct {
	Transactions []core.BankTransaction `json:"transactions"`
}

func (s *Server) handleImportBankTransactions(w http.ResponseWriter, r *http.Request) {
	var req importBankRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Transactions) == 0 {
		writeError(w, http.StatusBadRequest, "no bank transactions to import")
		return
	}
	for i, tx := range req.Transactions {
		if err := tx.Flow.Validate(); err != nil {
			slog.WarnContext(r.Context(), "Rejecting bank import, invalid flow",
				"index", i, "flow", tx.Flow)
			writeError(w, http.StatusBadRequest, "invalid bank flow in import")
			return
		}
	}

	if err := s.store.ImportBankTransactions(r.Context(), req.Transactions); err != nil {
		writeStoreError(w, r, err, "import bank transactions")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"imported": len(req.Transactions)})
}

// handleAnalyzeBankTransaction asks the collaborator how to book one statement
// line and persists the suggestion on the record. The adapter already degrades
// to IGNORE on collaborator failure, so the error path here is for the store.
func (s *Server) handleAnalyzeBankTransaction(w http.ResponseWriter, r *http.Request) {
	if !s.aiReady(w) {
		return
	}

	id := r.PathValue("id")
	tx, err := s.store.GetBankTransaction(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "get bank transaction")
		return
	}

	suggestion, err := s.ai.AnalyzeBankTransaction(r.Context(), tx.Description, tx.Amount.VND, tx.Flow)
	if err != nil {
		slog.ErrorContext(r.Context(), "Bank analysis failed", "id", id, "error", err)
		writeError(w, http.StatusBadGateway, "bank analysis failed")
		return
	}

	if err := s.store.SaveBankSuggestion(r.Context(), id, suggestion); err != nil {
		writeStoreError(w, r, err, "save bank suggestion")
		return
	}

	tx.Suggestion = &suggestion
	writeJSON(w, http.StatusOK, tx)
}

// handleApproveBankTransaction books the stored suggestion. Create actions
// append a ledger transaction (credits book as income, debits as expense);
// every approved line ends up MATCHED regardless of action.
func (s *Server) handleApproveBankTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	bankTx, err := s.store.GetBankTransaction(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "get bank transaction")
		return
	}

	if bankTx.Status != core.BankNew {
		writeError(w, http.StatusConflict, "bank transaction already processed")
		return
	}
	if bankTx.Suggestion == nil {
		writeError(w, http.StatusBadRequest, "bank transaction has no suggestion, analyze it first")
		return
	}

	var createdID string
	suggestion := bankTx.Suggestion
	if suggestion.Action == core.ActionCreateTransaction || suggestion.Action == core.ActionCreateInvoice {
		txType := core.Expense
		if bankTx.Flow == core.Credit {
			txType = core.Income
		}
		category := suggestion.Category
		if category == "" {
			category = "Khác"
		}

		createdID, err = s.ledger.AddTransaction(r.Context(), core.Transaction{
			Date:        bankTx.Date,
			Description: bankTx.Description,
			Amount:      bankTx.Amount,
			Type:        txType,
			Category:    category,
		})
		if err != nil {
			writeStoreError(w, r, err, "book bank transaction")
			return
		}
	}

	if err := s.store.SetBankStatus(r.Context(), id, core.BankMatched); err != nil {
		writeStoreError(w, r, err, "update bank status")
		return
	}

	slog.InfoContext(r.Context(), "Approved bank transaction",
		"id", id,
		"action", suggestion.Action,
		"created_transaction", createdID)

	bankTx.Status = core.BankMatched
	writeJSON(w, http.StatusOK, struct {
		core.BankTransaction
		CreatedTransactionID string `json:"createdTransactionId,omitempty"`
	}{bankTx, createdID})
}
