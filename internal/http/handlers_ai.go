package http

import (
	"log/slog"
	"net/http"
	"strings"
)

// aiReady guards the collaborator endpoints. No configured collaborator means
// the endpoints exist but answer 503 instead of 404.
func (s *Server) aiReady(w http.ResponseWriter) bool {
	if s.ai == nil {
		writeError(w, http.StatusServiceUnavailable, "AI collaborator not configured")
		return false
	}
	return true
}

type predictCategoryRequest struct {
	Description string `json:"description"`
}

func (s *Server) handlePredictCategory(w http.ResponseWriter, r *http.Request) {
	if !s.aiReady(w) {
		return
	}

	var req predictCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "missing description")
		return
	}

	prediction, err := s.ai.PredictCategory(r.Context(), req.Description)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category prediction failed", "error", err)
		writeError(w, http.StatusBadGateway, "category prediction failed")
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

type reportResponse struct {
	Report string `json:"report"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !s.aiReady(w) {
		return
	}

	txs, err := s.transactions(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list transactions")
		return
	}

	report, err := s.ai.GenerateReport(r.Context(), txs)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "report generation failed")
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Report: report})
}

type adviceRequest struct {
	Query string `json:"query"`
}

type adviceResponse struct {
	Advice string `json:"advice"`
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	if !s.aiReady(w) {
		return
	}

	var req adviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	txs, err := s.transactions(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list transactions")
		return
	}

	advice, err := s.ai.Advise(r.Context(), txs, req.Query)
	if err != nil {
		slog.ErrorContext(r.Context(), "Advice request failed", "error", err)
		writeError(w, http.StatusBadGateway, "advice request failed")
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Advice: advice})
}
