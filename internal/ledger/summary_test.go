package ledger

import (
	"testing"

	"sothuchi/internal/core"
)

func tx(date core.Date, desc string, amount int64, typ core.TransactionType, cat string) core.Transaction {
	return core.Transaction{Date: date, Description: desc, Amount: core.Money{VND: amount}, Type: typ, Category: cat}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalIncome != 0 || s.TotalExpense != 0 || s.NetProfit != 0 {
		t.Fatalf("empty ledger should yield zero summary, got %+v", s)
	}
}

func TestSummarizeNetProfit(t *testing.T) {
	txs := []core.Transaction{
		tx("2023-11-20", "Thiết kế website", 15000000, core.Income, "Bán hàng"),
		tx("2023-11-18", "Thuê văn phòng tháng 11", 5000000, core.Expense, "Văn phòng"),
		tx("2023-11-15", "Mua văn phòng phẩm", 500000, core.Expense, "Văn phòng phẩm"),
	}
	s := Summarize(txs)
	if s.TotalIncome != 15000000 {
		t.Errorf("TotalIncome = %d, want 15000000", s.TotalIncome)
	}
	if s.TotalExpense != 5500000 {
		t.Errorf("TotalExpense = %d, want 5500000", s.TotalExpense)
	}
	if s.NetProfit != s.TotalIncome-s.TotalExpense {
		t.Errorf("NetProfit = %d, want TotalIncome-TotalExpense = %d", s.NetProfit, s.TotalIncome-s.TotalExpense)
	}
}

func TestSummarizeNegativeNet(t *testing.T) {
	txs := []core.Transaction{
		tx("2023-11-01", "thu", 100, core.Income, "A"),
		tx("2023-11-02", "chi", 500, core.Expense, "B"),
	}
	if s := Summarize(txs); s.NetProfit != -400 {
		t.Fatalf("NetProfit = %d, want -400", s.NetProfit)
	}
}

func TestCategoryTotalsExcludesIncome(t *testing.T) {
	txs := []core.Transaction{
		tx("2023-11-01", "a", 100, core.Expense, "A"),
		tx("2023-11-02", "b", 50, core.Expense, "A"),
		tx("2023-11-03", "c", 9999, core.Income, "A"),
	}
	got := CategoryTotals(txs)
	if len(got) != 1 {
		t.Fatalf("expected single category, got %v", got)
	}
	if got["A"] != 150 {
		t.Fatalf("A = %d, want 150", got["A"])
	}
}

func TestCategoryTotalsSumMatchesTotalExpense(t *testing.T) {
	txs := []core.Transaction{
		tx("2023-11-01", "a", 100, core.Expense, "A"),
		tx("2023-11-02", "b", 250, core.Expense, "B"),
		tx("2023-11-03", "c", 75, core.Expense, "A"),
		tx("2023-11-04", "d", 400, core.Income, "C"),
	}
	var sum int64
	for _, v := range CategoryTotals(txs) {
		sum += v
	}
	if s := Summarize(txs); sum != s.TotalExpense {
		t.Fatalf("category totals sum %d != TotalExpense %d", sum, s.TotalExpense)
	}
}

func TestCategoryTotalsOmitsZeroCategories(t *testing.T) {
	txs := []core.Transaction{
		tx("2023-11-01", "thu", 100, core.Income, "Lương"),
	}
	got := CategoryTotals(txs)
	if _, ok := got["Lương"]; ok {
		t.Fatalf("income-only category must be absent, got %v", got)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestAggregationIdempotent(t *testing.T) {
	txs := []core.Transaction{
		tx("2023-11-01", "a", 100, core.Expense, "A"),
		tx("2023-11-02", "b", 200, core.Income, "B"),
	}
	s1, s2 := Summarize(txs), Summarize(txs)
	if s1 != s2 {
		t.Fatalf("Summarize not idempotent: %+v vs %+v", s1, s2)
	}
	c1, c2 := CategoryTotals(txs), CategoryTotals(txs)
	if len(c1) != len(c2) || c1["A"] != c2["A"] {
		t.Fatalf("CategoryTotals not idempotent: %v vs %v", c1, c2)
	}
}

func TestCategoriesDistinctInOrder(t *testing.T) {
	txs := []core.Transaction{
		tx("2023-11-01", "a", 1, core.Expense, "Văn phòng"),
		tx("2023-11-02", "b", 1, core.Income, "Bán hàng"),
		tx("2023-11-03", "c", 1, core.Expense, "Văn phòng"),
	}
	got := Categories(txs)
	want := []string{"Văn phòng", "Bán hàng"}
	if len(got) != len(want) {
		t.Fatalf("Categories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Categories = %v, want %v", got, want)
		}
	}
}
