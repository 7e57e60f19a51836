package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"sothuchi/internal/core"
	"sothuchi/internal/store"
)

const maxBodyBytes = 10 << 20 // invoice images arrive base64-encoded in JSON

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps a store failure onto the right status code.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, verb string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	slog.ErrorContext(r.Context(), "Store operation failed", "verb", verb, "error", err)
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s failed", verb))
}

func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// validationStatus distinguishes user errors from infrastructure failures on
// the create paths.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrEmptyCategory)
}
