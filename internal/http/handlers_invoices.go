package http

import (
	"log/slog"
	"net/http"
	"strings"

	"sothuchi/internal/core"
	"sothuchi/internal/export"
)

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.store.ListInvoices(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list invoices")
		return
	}
	if invoices == nil {
		invoices = []core.InvoiceData{}
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv core.InvoiceData
	if err := decodeJSON(r, &inv); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(inv.Description) == "" && strings.TrimSpace(inv.VendorName) == "" {
		writeError(w, http.StatusBadRequest, "invoice needs a description or vendor name")
		return
	}

	id, err := s.store.AppendInvoice(r.Context(), inv)
	if err != nil {
		writeStoreError(w, r, err, "create invoice")
		return
	}

	inv.ID = id
	writeJSON(w, http.StatusCreated, inv)
}

type extractInvoiceRequest struct {
	FileName    string `json:"fileName"`
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}

// handleExtractInvoice runs image extraction only; the client reviews the
// fields before POSTing the invoice proper.
func (s *Server) handleExtractInvoice(w http.ResponseWriter, r *http.Request) {
	if !s.aiReady(w) {
		return
	}

	var req extractInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ImageBase64 == "" {
		writeError(w, http.StatusBadRequest, "missing image data")
		return
	}
	if req.MimeType == "" {
		req.MimeType = "image/jpeg"
	}

	data, err := s.ai.ExtractInvoice(r.Context(), req.ImageBase64, req.MimeType)
	if err != nil {
		slog.ErrorContext(r.Context(), "Invoice extraction failed",
			"file", req.FileName, "error", err)
		writeError(w, http.StatusBadGateway, "invoice extraction failed")
		return
	}

	data.FileName = req.FileName
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleExportInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.store.ListInvoices(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "list invoices")
		return
	}

	w.Header().Set("Content-Type", export.CSVContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="hoa-don.csv"`)
	_, _ = w.Write([]byte(export.InvoicesCSV(invoices)))
}
