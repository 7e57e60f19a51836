// Package recon validates bank-to-contract reconciliation results coming back
// from the AI collaborator. Numeric fields in the collaborator's output are
// never trusted: everything derivable from local records is recomputed here.
package recon

import (
	"strings"

	"sothuchi/internal/core"
)

// RawResult is the collaborator's loosely-typed match payload, before local
// validation. Numeric fields may be missing, wrong, or hallucinated.
type RawResult struct {
	BankTxID       string `json:"bankTxId"`
	ContractID     string `json:"contractId"`
	ReceivedAmount int64  `json:"receivedAmount"`
	ContractValue  int64  `json:"contractValue"`
	InvoicedAmount int64  `json:"invoicedAmount"`
	Difference     int64  `json:"difference"`
	Reason         string `json:"reason"`
	Suggestion     string `json:"suggestion"`
}

// Suggested actions by sign of the difference. Wording is presentation-level;
// the sign branching is the contract.
const (
	SuggestSupplementaryInvoice = "Xuất hóa đơn bổ sung"
	SuggestMatched              = "Đã khớp - Không cần xử lý"
	SuggestRecoverReceivable    = "Thu hồi công nợ"
)

// Outcome maps a locally computed difference to the suggested action.
// difference > 0: money arrived beyond what was invoiced, issue a
// supplementary invoice. difference == 0: matched. difference < 0: invoiced
// more than received, chase the receivable.
func Outcome(difference int64) string {
	switch {
	case difference > 0:
		return SuggestSupplementaryInvoice
	case difference < 0:
		return SuggestRecoverReceivable
	default:
		return SuggestMatched
	}
}

// CreditsOnly selects the CREDIT statement lines that still need matching.
// Debits never reconcile against customer contracts.
func CreditsOnly(txs []core.BankTransaction) []core.BankTransaction {
	out := make([]core.BankTransaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Flow == core.Credit {
			out = append(out, tx)
		}
	}
	return out
}

// Normalize turns the collaborator's raw matches into trustworthy
// ReconciliationResults. Results referencing unknown bank transactions or
// contracts are dropped; receivedAmount, contractValue and invoicedAmount are
// taken from the local records; difference and suggestion are recomputed.
// Only the free-text reason survives from the collaborator as-is.
func Normalize(raw []RawResult, bankTxs []core.BankTransaction, contracts []core.Contract) []core.ReconciliationResult {
	bankByID := make(map[string]core.BankTransaction, len(bankTxs))
	for _, tx := range bankTxs {
		bankByID[tx.ID] = tx
	}
	contractByID := make(map[string]core.Contract, len(contracts))
	for _, c := range contracts {
		contractByID[c.ID] = c
	}

	out := make([]core.ReconciliationResult, 0, len(raw))
	for _, r := range raw {
		tx, ok := bankByID[r.BankTxID]
		if !ok {
			continue
		}
		contract, ok := contractByID[r.ContractID]
		if !ok {
			continue
		}
		difference := tx.Amount.VND - contract.InvoicedAmount
		out = append(out, core.ReconciliationResult{
			BankTxID:       tx.ID,
			ContractID:     contract.ID,
			ReceivedAmount: tx.Amount.VND,
			ContractValue:  contract.ContractValue,
			InvoicedAmount: contract.InvoicedAmount,
			Difference:     difference,
			Reason:         strings.TrimSpace(r.Reason),
			Suggestion:     Outcome(difference),
		})
	}
	return out
}
