package http

import (
	"log/slog"
	"net/http"

	"sothuchi/internal/core"
	"sothuchi/internal/recon"
)

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := s.store.ListContracts(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list contracts")
		return
	}
	if contracts == nil {
		contracts = []core.Contract{}
	}
	writeJSON(w, http.StatusOK, contracts)
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var c core.Contract
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if c.Status == "" {
		c.Status = core.ContractOpen
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.AppendContract(r.Context(), c)
	if err != nil {
		writeStoreError(w, r, err, "create contract")
		return
	}

	c.ID = id
	writeJSON(w, http.StatusCreated, c)
}

// handleReconciliationMatch pairs incoming bank credits with contracts. The
// collaborator proposes the pairing; recon.Normalize recomputes every number
// locally before the response goes out.
func (s *Server) handleReconciliationMatch(w http.ResponseWriter, r *http.Request) {
	if !s.aiReady(w) {
		return
	}

	bankTxs, err := s.store.ListBankTransactions(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list bank transactions")
		return
	}
	contracts, err := s.store.ListContracts(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list contracts")
		return
	}

	credits := recon.CreditsOnly(bankTxs)
	if len(credits) == 0 || len(contracts) == 0 {
		writeJSON(w, http.StatusOK, []core.ReconciliationResult{})
		return
	}

	raw, err := s.ai.MatchBankToContracts(r.Context(), credits, contracts)
	if err != nil {
		slog.ErrorContext(r.Context(), "Contract matching failed", "error", err)
		writeError(w, http.StatusBadGateway, "contract matching failed")
		return
	}

	results := recon.Normalize(raw, bankTxs, contracts)
	if results == nil {
		results = []core.ReconciliationResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
