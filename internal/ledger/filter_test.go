package ledger

import (
	"testing"

	"sothuchi/internal/core"
)

func sampleLedger() []core.Transaction {
	return []core.Transaction{
		tx("2023-11-01", "Mua mực in", 500000, core.Expense, "Văn phòng"),
		tx("2023-11-15", "Thiết kế web", 15000000, core.Income, "Bán hàng"),
	}
}

func TestFilterByType(t *testing.T) {
	got := Filter(sampleLedger(), FilterSpec{Type: core.Expense})
	if len(got) != 1 || got[0].Description != "Mua mực in" {
		t.Fatalf("got %+v, want only the expense record", got)
	}
	if total := FilteredTotal(got); total != -500000 {
		t.Fatalf("filtered total = %d, want -500000", total)
	}
}

func TestFilterNoConstraints(t *testing.T) {
	in := sampleLedger()
	cases := []FilterSpec{
		{},
		{Type: All, Category: All},
	}
	for i, spec := range cases {
		got := Filter(in, spec)
		if len(got) != len(in) {
			t.Fatalf("case %d: unconstrained filter dropped records: %+v", i, got)
		}
	}
}

func TestFilterSearchTermMatchesDescriptionOrCategory(t *testing.T) {
	in := sampleLedger()

	// case-insensitive substring on description
	got := Filter(in, FilterSpec{SearchTerm: "mực"})
	if len(got) != 1 || got[0].Category != "Văn phòng" {
		t.Fatalf("description search: got %+v", got)
	}

	// matches category too
	got = Filter(in, FilterSpec{SearchTerm: "bán hàng"})
	if len(got) != 1 || got[0].Type != core.Income {
		t.Fatalf("category search: got %+v", got)
	}

	got = Filter(in, FilterSpec{SearchTerm: "không tồn tại"})
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestFilterDateRange(t *testing.T) {
	in := sampleLedger()

	got := Filter(in, FilterSpec{DateFrom: "2023-11-02"})
	if len(got) != 1 || got[0].Date != "2023-11-15" {
		t.Fatalf("dateFrom: got %+v", got)
	}

	got = Filter(in, FilterSpec{DateTo: "2023-11-01"})
	if len(got) != 1 || got[0].Date != "2023-11-01" {
		t.Fatalf("dateTo: got %+v", got)
	}

	// bounds are inclusive
	got = Filter(in, FilterSpec{DateFrom: "2023-11-01", DateTo: "2023-11-15"})
	if len(got) != 2 {
		t.Fatalf("inclusive range: got %+v", got)
	}
}

func TestFilterConjunction(t *testing.T) {
	in := []core.Transaction{
		tx("2023-11-01", "Mua mực in", 500000, core.Expense, "Văn phòng"),
		tx("2023-11-05", "Mua giấy in", 200000, core.Expense, "Văn phòng"),
		tx("2023-11-15", "Thiết kế web", 15000000, core.Income, "Bán hàng"),
	}
	got := Filter(in, FilterSpec{
		SearchTerm: "mua",
		Type:       core.Expense,
		Category:   "Văn phòng",
		DateFrom:   "2023-11-02",
		DateTo:     "2023-11-30",
	})
	if len(got) != 1 || got[0].Description != "Mua giấy in" {
		t.Fatalf("conjunction: got %+v", got)
	}
}

func TestFilterPreservesInputOrder(t *testing.T) {
	in := []core.Transaction{
		tx("2023-11-20", "c", 1, core.Expense, "A"),
		tx("2023-11-05", "a", 1, core.Expense, "A"),
		tx("2023-11-12", "b", 1, core.Expense, "A"),
	}
	got := Filter(in, FilterSpec{Type: core.Expense})
	for i := range in {
		if got[i].Description != in[i].Description {
			t.Fatalf("order changed: %+v", got)
		}
	}
}

func TestFilteredTotalSigned(t *testing.T) {
	in := []core.Transaction{
		tx("2023-11-01", "thu", 300, core.Income, "A"),
		tx("2023-11-02", "chi", 100, core.Expense, "B"),
	}
	if total := FilteredTotal(in); total != 200 {
		t.Fatalf("total = %d, want 200", total)
	}
	if total := FilteredTotal(nil); total != 0 {
		t.Fatalf("empty total = %d, want 0", total)
	}
}
