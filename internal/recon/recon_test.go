package recon

import (
	"testing"

	"sothuchi/internal/core"
)

func bankCredit(id string, amount int64) core.BankTransaction {
	return core.BankTransaction{
		ID:          id,
		Date:        "2023-11-05",
		Description: "CK TIEN VE",
		Amount:      core.Money{VND: amount},
		Flow:        core.Credit,
		Status:      core.BankNew,
	}
}

func TestOutcome(t *testing.T) {
	cases := []struct {
		difference int64
		want       string
	}{
		{17000000, SuggestSupplementaryInvoice},
		{1, SuggestSupplementaryInvoice},
		{0, SuggestMatched},
		{-1, SuggestRecoverReceivable},
		{-5000000, SuggestRecoverReceivable},
	}
	for _, c := range cases {
		if got := Outcome(c.difference); got != c.want {
			t.Errorf("Outcome(%d) = %q, want %q", c.difference, got, c.want)
		}
	}
}

func TestCreditsOnly(t *testing.T) {
	txs := []core.BankTransaction{
		bankCredit("b1", 15000000),
		{ID: "b2", Amount: core.Money{VND: 2500000}, Flow: core.Debit},
		bankCredit("b3", 30000000),
	}
	got := CreditsOnly(txs)
	if len(got) != 2 || got[0].ID != "b1" || got[1].ID != "b3" {
		t.Fatalf("CreditsOnly = %+v", got)
	}
	if got := CreditsOnly(nil); len(got) != 0 {
		t.Fatalf("CreditsOnly(nil) = %+v, want empty", got)
	}
}

func TestNormalizeRecomputesDifference(t *testing.T) {
	bankTxs := []core.BankTransaction{bankCredit("b1", 25000000)}
	contracts := []core.Contract{{
		ID:             "c1",
		CustomerName:   "Công Ty TNHH Du Lịch Việt",
		ContractValue:  50000000,
		InvoicedAmount: 8000000,
		Status:         core.ContractOpen,
	}}

	// collaborator reports a wrong difference and wrong amounts
	raw := []RawResult{{
		BankTxID:       "b1",
		ContractID:     "c1",
		ReceivedAmount: 99,
		InvoicedAmount: 99,
		Difference:     -123456,
		Reason:         "  Khớp mã hợp đồng 001  ",
		Suggestion:     "làm gì đó",
	}}

	got := Normalize(raw, bankTxs, contracts)
	if len(got) != 1 {
		t.Fatalf("Normalize = %+v, want 1 result", got)
	}
	r := got[0]
	if r.ReceivedAmount != 25000000 || r.InvoicedAmount != 8000000 || r.ContractValue != 50000000 {
		t.Errorf("amounts not taken from local records: %+v", r)
	}
	if r.Difference != 17000000 {
		t.Errorf("difference = %d, want 17000000", r.Difference)
	}
	if r.Suggestion != SuggestSupplementaryInvoice {
		t.Errorf("suggestion = %q", r.Suggestion)
	}
	if r.Reason != "Khớp mã hợp đồng 001" {
		t.Errorf("reason = %q", r.Reason)
	}
}

func TestNormalizeDropsUnknownReferences(t *testing.T) {
	bankTxs := []core.BankTransaction{bankCredit("b1", 12000000)}
	contracts := []core.Contract{{ID: "c1", CustomerName: "Anh An", ContractValue: 12000000, Status: core.ContractOpen}}

	raw := []RawResult{
		{BankTxID: "b1", ContractID: "c-ghost"},
		{BankTxID: "b-ghost", ContractID: "c1"},
		{BankTxID: "b1", ContractID: "c1"},
	}
	got := Normalize(raw, bankTxs, contracts)
	if len(got) != 1 || got[0].BankTxID != "b1" || got[0].ContractID != "c1" {
		t.Fatalf("Normalize = %+v, want only the fully resolvable match", got)
	}
	if got[0].Difference != 12000000 || got[0].Suggestion != SuggestSupplementaryInvoice {
		t.Fatalf("unexpected result %+v", got[0])
	}
}

func TestNormalizeEmptyInputs(t *testing.T) {
	if got := Normalize(nil, nil, nil); len(got) != 0 {
		t.Fatalf("Normalize(nil) = %+v, want empty", got)
	}
}
