// Package http is the JSON API consumed by the SPA client. Aggregation stays
// in internal/ledger; handlers only parse requests, call collaborators, and
// shape responses.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"sothuchi/internal/ai"
	"sothuchi/internal/core"
	"sothuchi/internal/services"
	"sothuchi/internal/store"
)

type Server struct {
	http.Server

	store  store.Store
	ledger *services.LedgerService
	ai     ai.Collaborator

	rateLimiter *rateLimiter

	// Ledger snapshot, invalidated by store change notifications rather than
	// a TTL. The store pushes, handlers re-read lazily.
	snapMu      sync.Mutex
	snapshot    []core.Transaction
	snapDirty   bool
	unsubscribe func()

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// The AI collaborator may be nil; its endpoints then answer 503.
func NewServer(addr string, st store.Store, ledger *services.LedgerService, collaborator ai.Collaborator) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:       st,
		ledger:      ledger,
		ai:          collaborator,
		rateLimiter: newRateLimiter(),
		snapDirty:   true,
	}
	s.unsubscribe = st.Subscribe(s.markDirty)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/transactions", s.wrap(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.wrap(s.handleCreateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.wrap(s.handleDeleteTransaction))
	mux.HandleFunc("GET /api/transactions/export", s.wrap(s.handleExport))

	mux.HandleFunc("GET /api/summary", s.wrap(s.handleSummary))
	mux.HandleFunc("GET /api/trend", s.wrap(s.handleTrend))
	mux.HandleFunc("GET /api/categories", s.wrap(s.handleCategories))
	mux.HandleFunc("GET /api/expenses/by-category", s.wrap(s.handleExpensesByCategory))

	mux.HandleFunc("POST /api/ai/predict-category", s.wrap(s.handlePredictCategory))
	mux.HandleFunc("POST /api/ai/report", s.wrap(s.handleReport))
	mux.HandleFunc("POST /api/ai/advice", s.wrap(s.handleAdvice))

	mux.HandleFunc("GET /api/invoices", s.wrap(s.handleListInvoices))
	mux.HandleFunc("POST /api/invoices", s.wrap(s.handleCreateInvoice))
	mux.HandleFunc("POST /api/invoices/extract", s.wrap(s.handleExtractInvoice))
	mux.HandleFunc("GET /api/invoices/export", s.wrap(s.handleExportInvoices))

	mux.HandleFunc("GET /api/bank/transactions", s.wrap(s.handleListBankTransactions))
	mux.HandleFunc("POST /api/bank/transactions", s.wrap(s.handleImportBankTransactions))
	mux.HandleFunc("POST /api/bank/transactions/{id}/analyze", s.wrap(s.handleAnalyzeBankTransaction))
	mux.HandleFunc("POST /api/bank/transactions/{id}/approve", s.wrap(s.handleApproveBankTransaction))

	mux.HandleFunc("GET /api/contracts", s.wrap(s.handleListContracts))
	mux.HandleFunc("POST /api/contracts", s.wrap(s.handleCreateContract))
	mux.HandleFunc("POST /api/reconciliation/match", s.wrap(s.handleReconciliationMatch))

	return s
}

func (s *Server) markDirty() {
	s.snapMu.Lock()
	s.snapDirty = true
	s.snapMu.Unlock()
}

// transactions returns the current ledger snapshot, re-reading from the store
// only after a change notification.
func (s *Server) transactions(ctx context.Context) ([]core.Transaction, error) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	if s.snapDirty {
		txs, err := s.store.ListTransactions(ctx)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		s.snapshot = txs
		s.snapDirty = false
	}

	out := make([]core.Transaction, len(s.snapshot))
	copy(out, s.snapshot)
	return out, nil
}

// Shutdown stops background cleanup and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// wrap adds security headers, rate limiting, request ids, and access logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := r.Context()

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Request-ID", requestID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
