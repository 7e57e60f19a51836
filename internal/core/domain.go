package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	Credit BankFlow = "CREDIT"
	Debit  BankFlow = "DEBIT"
)

const (
	BankNew      BankStatus = "NEW"
	BankMatched  BankStatus = "MATCHED"
	BankInvoiced BankStatus = "INVOICED"
)

const (
	ContractOpen   ContractStatus = "OPEN"
	ContractClosed ContractStatus = "CLOSED"
)

const (
	ActionCreateTransaction BankAction = "CREATE_TRANSACTION"
	ActionCreateInvoice     BankAction = "CREATE_INVOICE"
	ActionIgnore            BankAction = "IGNORE"
)

// DateLayout is the canonical ledger date format. Fixed width, so lexical
// comparison of two valid Dates matches chronological comparison.
const DateLayout = "2006-01-02"

type (
	TransactionType string
	BankFlow        string
	BankStatus      string
	ContractStatus  string
	BankAction      string

	// Date is an ISO calendar day (YYYY-MM-DD) with no time component.
	Date string

	// Transaction is a single ledger entry. Immutable once the store has
	// assigned an ID; the only lifecycle operations are append and remove.
	Transaction struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
	}

	// FinancialSummary is derived from the full transaction set, never stored.
	FinancialSummary struct {
		TotalIncome  int64 `json:"totalIncome"`
		TotalExpense int64 `json:"totalExpense"`
		NetProfit    int64 `json:"netProfit"`
	}

	// CategoryPrediction is the AI collaborator's category suggestion for a
	// free-text description.
	CategoryPrediction struct {
		Category   string          `json:"category"`
		Type       TransactionType `json:"type"`
		Confidence float64         `json:"confidence"`
	}

	InvoiceItem struct {
		Description string `json:"description"`
		Quantity    int64  `json:"quantity"`
		UnitPrice   int64  `json:"unitPrice"`
		TotalAmount int64  `json:"totalAmount"`
	}

	// InvoiceData is the structured result of invoice image extraction.
	InvoiceData struct {
		ID            string        `json:"id,omitempty"`
		FileName      string        `json:"fileName"`
		InvoiceNumber string        `json:"invoiceNumber"`
		Date          Date          `json:"date"`
		VendorName    string        `json:"vendorName"`
		VendorTaxCode string        `json:"vendorTaxCode,omitempty"`
		VendorAddress string        `json:"vendorAddress,omitempty"`
		BuyerName     string        `json:"buyerName,omitempty"`
		Items         []InvoiceItem `json:"items,omitempty"`
		SubTotal      int64         `json:"subTotal,omitempty"`
		TaxAmount     int64         `json:"taxAmount"`
		TaxRate       string        `json:"taxRate,omitempty"`
		TotalAmount   int64         `json:"totalAmount"`
		PaymentMethod string        `json:"paymentMethod,omitempty"`
		Description   string        `json:"description"`
		Category      string        `json:"category"`
	}

	// BankSuggestion is the AI collaborator's proposed handling of a bank
	// statement line.
	BankSuggestion struct {
		Action      BankAction `json:"action"`
		Category    string     `json:"category,omitempty"`
		Explanation string     `json:"explanation,omitempty"`
		Note        string     `json:"note,omitempty"`
		Confidence  float64    `json:"confidence,omitempty"`
	}

	// BankTransaction is a statement line imported from the bank feed.
	BankTransaction struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Flow        BankFlow        `json:"type"`
		Status      BankStatus      `json:"status"`
		Suggestion  *BankSuggestion `json:"aiSuggestion,omitempty"`
	}

	// Contract is an outstanding customer contract awaiting invoicing.
	Contract struct {
		ID             string         `json:"id"`
		CustomerName   string         `json:"customerName"`
		ContractValue  int64          `json:"contractValue"`
		InvoicedAmount int64          `json:"invoicedAmount"`
		Status         ContractStatus `json:"status"`
	}

	// ReconciliationResult pairs a bank credit with a contract. Difference is
	// always recomputed locally as ReceivedAmount - InvoicedAmount.
	ReconciliationResult struct {
		BankTxID       string `json:"bankTxId"`
		ContractID     string `json:"contractId"`
		ReceivedAmount int64  `json:"receivedAmount"`
		ContractValue  int64  `json:"contractValue"`
		InvoicedAmount int64  `json:"invoicedAmount"`
		Difference     int64  `json:"difference"`
		Reason         string `json:"reason"`
		Suggestion     string `json:"suggestion"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
)

// NewDate builds a Date from a time.Time, dropping the time component.
func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time parses the date. Malformed dates surface here, not as a panic later.
func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func (d Date) Validate() error {
	_, err := d.Time()
	return err
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (f BankFlow) Validate() error {
	switch f {
	case Credit, Debit:
		return nil
	}
	return errors.New("invalid bank flow")
}

func (tx Transaction) Validate() error {
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(tx.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (c Contract) Validate() error {
	if strings.TrimSpace(c.CustomerName) == "" {
		return errors.New("empty customer name")
	}
	if c.ContractValue < 0 || c.InvoicedAmount < 0 {
		return ErrInvalidAmount
	}
	switch c.Status {
	case ContractOpen, ContractClosed:
	default:
		return errors.New("invalid contract status")
	}
	return nil
}
