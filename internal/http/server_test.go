package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sothuchi/internal/core"
	"sothuchi/internal/export"
	"sothuchi/internal/ledger"
	"sothuchi/internal/recon"
	"sothuchi/internal/services"
	"sothuchi/internal/store/memory"
)

// fakeCollaborator returns canned answers so handler plumbing is testable
// without a live model.
type fakeCollaborator struct {
	prediction core.CategoryPrediction
	invoice    core.InvoiceData
	suggestion core.BankSuggestion
	matches    []recon.RawResult
	report     string
	advice     string
}

func (f *fakeCollaborator) PredictCategory(ctx context.Context, description string) (core.CategoryPrediction, error) {
	return f.prediction, nil
}

func (f *fakeCollaborator) ExtractInvoice(ctx context.Context, imageBase64, mimeType string) (core.InvoiceData, error) {
	return f.invoice, nil
}

func (f *fakeCollaborator) AnalyzeBankTransaction(ctx context.Context, description string, amount int64, flow core.BankFlow) (core.BankSuggestion, error) {
	return f.suggestion, nil
}

func (f *fakeCollaborator) MatchBankToContracts(ctx context.Context, credits []core.BankTransaction, contracts []core.Contract) ([]recon.RawResult, error) {
	return f.matches, nil
}

func (f *fakeCollaborator) GenerateReport(ctx context.Context, txs []core.Transaction) (string, error) {
	return f.report, nil
}

func (f *fakeCollaborator) Advise(ctx context.Context, txs []core.Transaction, query string) (string, error) {
	return f.advice, nil
}

func newTestServer(t *testing.T, collaborator *fakeCollaborator) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc := services.NewLedgerService(st, nil)

	var srv *Server
	if collaborator != nil {
		srv = NewServer(":0", st, svc, collaborator)
	} else {
		srv = NewServer(":0", st, svc, nil)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return v
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		Date:        "2023-11-15",
		Description: "Thiết kế web cho Cafe Sách",
		Amount:      core.Money{VND: 15000000},
		Type:        core.Income,
		Category:    "Bán hàng",
	}
}

func TestCreateAndListTransactions(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodPost, "/api/transactions", sampleTransaction())
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	created := decodeBody[core.Transaction](t, w)
	if created.ID == "" {
		t.Fatal("created transaction should carry an id")
	}

	w = doJSON(t, srv, http.MethodGet, "/api/transactions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	list := decodeBody[transactionListResponse](t, w)
	if len(list.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(list.Transactions))
	}
	if list.Total != 15000000 {
		t.Errorf("total = %d, want 15000000", list.Total)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	bad := sampleTransaction()
	bad.Type = "REVENUE"
	w := doJSON(t, srv, http.MethodPost, "/api/transactions", bad)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/transactions", nil)
	list := decodeBody[transactionListResponse](t, w)
	if len(list.Transactions) != 0 {
		t.Error("invalid transaction must not be stored")
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodPost, "/api/transactions", sampleTransaction())
	created := decodeBody[core.Transaction](t, w)

	w = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	expense := core.Transaction{
		Date:        "2023-11-10",
		Description: "Mua mực in",
		Amount:      core.Money{VND: 500000},
		Type:        core.Expense,
		Category:    "Văn phòng",
	}
	doJSON(t, srv, http.MethodPost, "/api/transactions", sampleTransaction())
	doJSON(t, srv, http.MethodPost, "/api/transactions", expense)

	w := doJSON(t, srv, http.MethodGet, "/api/transactions?type=EXPENSE", nil)
	list := decodeBody[transactionListResponse](t, w)
	if len(list.Transactions) != 1 || list.Transactions[0].Description != "Mua mực in" {
		t.Fatalf("filtered list = %+v", list.Transactions)
	}
	if list.Total != -500000 {
		t.Errorf("expense-only total = %d, want -500000", list.Total)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/transactions?search=cafe", nil)
	list = decodeBody[transactionListResponse](t, w)
	if len(list.Transactions) != 1 || list.Transactions[0].Type != core.Income {
		t.Errorf("search should match description case-insensitively: %+v", list.Transactions)
	}
}

func TestSummaryAndExpensesByCategory(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	doJSON(t, srv, http.MethodPost, "/api/transactions", sampleTransaction())
	doJSON(t, srv, http.MethodPost, "/api/transactions", core.Transaction{
		Date: "2023-11-10", Description: "Mua mực in",
		Amount: core.Money{VND: 500000}, Type: core.Expense, Category: "Văn phòng",
	})

	w := doJSON(t, srv, http.MethodGet, "/api/summary", nil)
	summary := decodeBody[core.FinancialSummary](t, w)
	if summary.TotalIncome != 15000000 || summary.TotalExpense != 500000 || summary.NetProfit != 14500000 {
		t.Errorf("summary = %+v", summary)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/expenses/by-category", nil)
	totals := decodeBody[map[string]int64](t, w)
	if totals["Văn phòng"] != 500000 {
		t.Errorf("category totals = %v", totals)
	}
	if _, ok := totals["Bán hàng"]; ok {
		t.Error("income categories must not appear in expense breakdown")
	}
}

func TestTrendGranularity(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	doJSON(t, srv, http.MethodPost, "/api/transactions", sampleTransaction())

	w := doJSON(t, srv, http.MethodGet, "/api/trend?granularity=month", nil)
	buckets := decodeBody[[]ledger.TrendBucket](t, w)
	if len(buckets) != 1 || buckets[0].PeriodKey != "2023-11" {
		t.Errorf("month buckets = %+v", buckets)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/trend?granularity=quarter", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid granularity status = %d, want 400", w.Code)
	}
}

func TestExportFormats(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	doJSON(t, srv, http.MethodPost, "/api/transactions", sampleTransaction())

	w := doJSON(t, srv, http.MethodGet, "/api/transactions/export?format=csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("csv export status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), export.BOM) {
		t.Error("csv export should start with a UTF-8 BOM")
	}
	if !strings.Contains(w.Body.String(), `"Ngày";"Mô tả"`) {
		t.Error("csv export should use semicolon delimiters")
	}

	w = doJSON(t, srv, http.MethodGet, "/api/transactions/export?format=excel", nil)
	if got := w.Header().Get("Content-Type"); got != "application/vnd.ms-excel" {
		t.Errorf("excel content type = %q", got)
	}
	if !strings.Contains(w.Body.String(), "x:ExcelWorkbook") {
		t.Error("excel export should carry the workbook XML island")
	}

	w = doJSON(t, srv, http.MethodGet, "/api/transactions/export?format=pdf", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want 400", w.Code)
	}
}

func TestAIEndpointsWithoutCollaborator(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	paths := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/ai/predict-category", predictCategoryRequest{Description: "tiền điện"}},
		{http.MethodPost, "/api/ai/report", nil},
		{http.MethodPost, "/api/ai/advice", adviceRequest{Query: "chi phí"}},
		{http.MethodPost, "/api/invoices/extract", extractInvoiceRequest{ImageBase64: "aGVsbG8="}},
	}
	for _, tc := range paths {
		w := doJSON(t, srv, tc.method, tc.path, tc.body)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", tc.path, w.Code)
		}
	}
}

func TestPredictCategory(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCollaborator{
		prediction: core.CategoryPrediction{Category: "Điện nước", Type: core.Expense, Confidence: 0.9},
	})

	w := doJSON(t, srv, http.MethodPost, "/api/ai/predict-category", predictCategoryRequest{Description: "tiền điện tháng 11"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decodeBody[core.CategoryPrediction](t, w)
	if got.Category != "Điện nước" || got.Type != core.Expense {
		t.Errorf("prediction = %+v", got)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/ai/predict-category", predictCategoryRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty description status = %d, want 400", w.Code)
	}
}

func TestBankAnalyzeAndApprove(t *testing.T) {
	srv, st := newTestServer(t, &fakeCollaborator{
		suggestion: core.BankSuggestion{
			Action:      core.ActionCreateTransaction,
			Category:    "Bán hàng",
			Explanation: "Khách thanh toán hợp đồng",
			Confidence:  0.95,
		},
	})

	st.Seed(nil, []core.BankTransaction{{
		ID:          "bank-1",
		Date:        "2023-11-20",
		Description: "CTY ABC CHUYEN KHOAN",
		Amount:      core.Money{VND: 25000000},
		Flow:        core.Credit,
		Status:      core.BankNew,
	}}, nil)

	w := doJSON(t, srv, http.MethodPost, "/api/bank/transactions/bank-1/analyze", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze status = %d, body %s", w.Code, w.Body.String())
	}
	analyzed := decodeBody[core.BankTransaction](t, w)
	if analyzed.Suggestion == nil || analyzed.Suggestion.Action != core.ActionCreateTransaction {
		t.Fatalf("analyzed = %+v", analyzed)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/bank/transactions/bank-1/approve", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", w.Code, w.Body.String())
	}

	// Credit flow books as income with the suggested category.
	txs, err := st.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d booked transactions, want 1", len(txs))
	}
	if txs[0].Type != core.Income || txs[0].Category != "Bán hàng" || txs[0].Amount.VND != 25000000 {
		t.Errorf("booked transaction = %+v", txs[0])
	}

	w = doJSON(t, srv, http.MethodPost, "/api/bank/transactions/bank-1/approve", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("re-approve status = %d, want 409", w.Code)
	}
}

func TestApproveWithoutSuggestion(t *testing.T) {
	srv, st := newTestServer(t, nil)
	st.Seed(nil, []core.BankTransaction{{
		ID: "bank-raw", Date: "2023-11-20", Description: "ATM RUT TIEN",
		Amount: core.Money{VND: 2000000}, Flow: core.Debit, Status: core.BankNew,
	}}, nil)

	w := doJSON(t, srv, http.MethodPost, "/api/bank/transactions/bank-raw/approve", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestReconciliationMatchRecomputesNumbers(t *testing.T) {
	srv, st := newTestServer(t, &fakeCollaborator{
		matches: []recon.RawResult{{
			BankTxID:   "bank-1",
			ContractID: "contract-1",
			Difference: -999, // hallucinated, must be ignored
			Reason:     "Tên khách hàng trùng khớp",
		}},
	})

	st.Seed(nil,
		[]core.BankTransaction{{
			ID: "bank-1", Date: "2023-11-20", Description: "CTY ABC CK",
			Amount: core.Money{VND: 25000000}, Flow: core.Credit, Status: core.BankNew,
		}},
		[]core.Contract{{
			ID: "contract-1", CustomerName: "Công ty ABC",
			ContractValue: 50000000, InvoicedAmount: 8000000, Status: core.ContractOpen,
		}})

	w := doJSON(t, srv, http.MethodPost, "/api/reconciliation/match", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	results := decodeBody[[]core.ReconciliationResult](t, w)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.Difference != 17000000 {
		t.Errorf("difference = %d, want locally recomputed 17000000", r.Difference)
	}
	if r.Suggestion != recon.SuggestSupplementaryInvoice {
		t.Errorf("suggestion = %q", r.Suggestion)
	}
	if r.Reason != "Tên khách hàng trùng khớp" {
		t.Errorf("reason = %q", r.Reason)
	}
}

func TestReconciliationMatchEmptyInputs(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCollaborator{})

	w := doJSON(t, srv, http.MethodPost, "/api/reconciliation/match", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	results := decodeBody[[]core.ReconciliationResult](t, w)
	if len(results) != 0 {
		t.Errorf("expected empty results, got %+v", results)
	}
}

func TestInvoiceExtractAndCreate(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCollaborator{
		invoice: core.InvoiceData{
			InvoiceNumber: "HD-001",
			Date:          "2023-11-01",
			VendorName:    "Công ty TNHH Giấy Việt",
			TotalAmount:   1080000,
			TaxAmount:     80000,
			Description:   "Mua giấy in",
			Category:      "Văn phòng",
		},
	})

	w := doJSON(t, srv, http.MethodPost, "/api/invoices/extract", extractInvoiceRequest{
		FileName:    "hoadon.jpg",
		ImageBase64: "aGVsbG8=",
		MimeType:    "image/jpeg",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("extract status = %d", w.Code)
	}
	extracted := decodeBody[core.InvoiceData](t, w)
	if extracted.FileName != "hoadon.jpg" {
		t.Errorf("extraction should carry the upload file name, got %q", extracted.FileName)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/invoices", extracted)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/api/invoices", nil)
	invoices := decodeBody[[]core.InvoiceData](t, w)
	if len(invoices) != 1 || invoices[0].InvoiceNumber != "HD-001" {
		t.Errorf("invoices = %+v", invoices)
	}
}

func TestBankImportValidatesFlow(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodPost, "/api/bank/transactions", importBankRequest{
		Transactions: []core.BankTransaction{{
			Date: "2023-11-20", Description: "CK den", Amount: core.Money{VND: 100000}, Flow: "TRANSFER",
		}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid flow status = %d, want 400", w.Code)
	}
}

func TestSnapshotInvalidationOnWrite(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodGet, "/api/summary", nil)
	before := decodeBody[core.FinancialSummary](t, w)
	if before.TotalIncome != 0 {
		t.Fatalf("empty ledger summary = %+v", before)
	}

	doJSON(t, srv, http.MethodPost, "/api/transactions", sampleTransaction())

	// The write must invalidate the cached snapshot, not wait for a TTL.
	w = doJSON(t, srv, http.MethodGet, "/api/summary", nil)
	after := decodeBody[core.FinancialSummary](t, w)
	if after.TotalIncome != 15000000 {
		t.Errorf("summary after write = %+v", after)
	}
}

func TestRateLimiterBlocksAfterBudget(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < rateLimitMaxRequests; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request over budget should be blocked")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other clients keep their own budget")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, w.Code)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodGet, "/api/summary", nil)
	if id := w.Header().Get("X-Request-ID"); !strings.HasPrefix(id, "req_") {
		t.Errorf("X-Request-ID = %q", id)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}
