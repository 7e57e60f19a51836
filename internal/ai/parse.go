package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"sothuchi/internal/core"
	"sothuchi/internal/recon"
)

// ExtractJSON pulls the JSON payload out of a model reply. Models wrap JSON
// in markdown fences or chatter around it more often than not, so this strips
// fences and trims to the outermost object or array.
func ExtractJSON(reply string) string {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	objStart := strings.IndexAny(s, "{[")
	if objStart < 0 {
		return s
	}
	var objEnd int
	if s[objStart] == '{' {
		objEnd = strings.LastIndex(s, "}")
	} else {
		objEnd = strings.LastIndex(s, "]")
	}
	if objEnd <= objStart {
		return s
	}
	return s[objStart : objEnd+1]
}

// ParsePrediction coerces a model reply into a CategoryPrediction: type falls
// back to EXPENSE when unrecognized, confidence is clamped to [0,1].
func ParsePrediction(reply string) (core.CategoryPrediction, error) {
	var p core.CategoryPrediction
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &p); err != nil {
		return core.CategoryPrediction{}, fmt.Errorf("decode prediction: %w", err)
	}
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = "Khác"
	}
	if p.Type.Validate() != nil {
		p.Type = core.Expense
	}
	p.Confidence = clamp01(p.Confidence)
	return p, nil
}

// ParseInvoice coerces a model reply into InvoiceData, tolerating missing
// optional fields. A zero totalAmount with a non-zero subTotal+tax is summed
// locally rather than trusted absent.
func ParseInvoice(reply string) (core.InvoiceData, error) {
	var inv core.InvoiceData
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &inv); err != nil {
		return core.InvoiceData{}, fmt.Errorf("decode invoice: %w", err)
	}
	if inv.TotalAmount == 0 && inv.SubTotal > 0 {
		inv.TotalAmount = inv.SubTotal + inv.TaxAmount
	}
	if strings.TrimSpace(inv.Category) == "" {
		inv.Category = "Khác"
	}
	if inv.Date.Validate() != nil {
		inv.Date = ""
	}
	return inv, nil
}

// ParseBankSuggestion coerces a model reply into a BankSuggestion. Unknown
// actions degrade to IGNORE so a confused model can never trigger a booking.
func ParseBankSuggestion(reply string) (core.BankSuggestion, error) {
	var s core.BankSuggestion
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &s); err != nil {
		return core.BankSuggestion{}, fmt.Errorf("decode suggestion: %w", err)
	}
	switch s.Action {
	case core.ActionCreateTransaction, core.ActionCreateInvoice, core.ActionIgnore:
	default:
		s.Action = core.ActionIgnore
	}
	s.Confidence = clamp01(s.Confidence)
	return s, nil
}

// ParseMatches decodes the matcher's raw result list. Validation of the
// numeric fields happens later in recon.Normalize, not here.
func ParseMatches(reply string) ([]recon.RawResult, error) {
	var raw []recon.RawResult
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &raw); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	return raw, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
