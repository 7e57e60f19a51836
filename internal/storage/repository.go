package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sothuchi/internal/core"
	"sothuchi/internal/store"
)

// Mirror states for the Sheets backup worker.
const (
	MirrorPending = "pending"
	MirrorDone    = "mirrored"
	MirrorError   = "error"
)

// SQLiteStore is the durable backend. It implements store.Store plus the
// mirror bookkeeping the backup worker needs.
type SQLiteStore struct {
	store.Hub
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount_vnd, type, category
		FROM transactions
		ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.Description, &tx.Amount.VND, &tx.Type, &tx.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var tx core.Transaction
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date, description, amount_vnd, type, category
		FROM transactions WHERE id = ?`, id).
		Scan(&tx.ID, &tx.Date, &tx.Description, &tx.Amount.VND, &tx.Type, &tx.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *SQLiteStore) AppendTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	tx.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, date, description, amount_vnd, type, category)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Date, tx.Description, tx.Amount.VND, tx.Type, tx.Category)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"date", tx.Date,
		"amount_vnd", tx.Amount.VND,
		"type", tx.Type)

	s.Notify()
	return tx.ID, nil
}

func (s *SQLiteStore) RemoveTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	s.Notify()
	return nil
}

// PendingMirror returns transactions the backup worker has not mirrored yet,
// oldest first so catch-up replays in insertion order.
func (s *SQLiteStore) PendingMirror(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount_vnd, type, category
		FROM transactions
		WHERE mirror_state = ?
		ORDER BY created_at ASC
		LIMIT ?`, MirrorPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending mirror transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.Description, &tx.Amount.VND, &tx.Type, &tx.Category); err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *SQLiteStore) MarkMirrored(ctx context.Context, id string) error {
	if err := s.setMirrorState(ctx, id, MirrorDone); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction marked as mirrored", "id", id)
	return nil
}

func (s *SQLiteStore) MarkMirrorError(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET mirror_state = ?, mirror_attempts = mirror_attempts + 1
		WHERE id = ?`, MirrorError, id)
	if err != nil {
		return fmt.Errorf("mark mirror error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with mirror error", "id", id)
	return nil
}

func (s *SQLiteStore) setMirrorState(ctx context.Context, id, state string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE transactions SET mirror_state = ? WHERE id = ?`, state, id)
	if err != nil {
		return fmt.Errorf("set mirror state %s: %w", state, err)
	}
	return nil
}

func (s *SQLiteStore) ListInvoices(ctx context.Context) ([]core.InvoiceData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, invoice_number, date, vendor_name, vendor_tax_code,
		       vendor_address, buyer_name, items_json, sub_total, tax_amount,
		       tax_rate, total_amount, payment_method, description, category
		FROM invoices
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []core.InvoiceData
	for rows.Next() {
		var inv core.InvoiceData
		var itemsJSON string
		if err := rows.Scan(&inv.ID, &inv.FileName, &inv.InvoiceNumber, &inv.Date,
			&inv.VendorName, &inv.VendorTaxCode, &inv.VendorAddress, &inv.BuyerName,
			&itemsJSON, &inv.SubTotal, &inv.TaxAmount, &inv.TaxRate, &inv.TotalAmount,
			&inv.PaymentMethod, &inv.Description, &inv.Category); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &inv.Items); err != nil {
			return nil, fmt.Errorf("decode invoice items: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *SQLiteStore) AppendInvoice(ctx context.Context, inv core.InvoiceData) (string, error) {
	inv.ID = uuid.NewString()
	items := inv.Items
	if items == nil {
		items = []core.InvoiceItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode invoice items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, file_name, invoice_number, date, vendor_name,
			vendor_tax_code, vendor_address, buyer_name, items_json, sub_total,
			tax_amount, tax_rate, total_amount, payment_method, description, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.FileName, inv.InvoiceNumber, inv.Date, inv.VendorName,
		inv.VendorTaxCode, inv.VendorAddress, inv.BuyerName, string(itemsJSON),
		inv.SubTotal, inv.TaxAmount, inv.TaxRate, inv.TotalAmount,
		inv.PaymentMethod, inv.Description, inv.Category)
	if err != nil {
		return "", fmt.Errorf("insert invoice: %w", err)
	}

	s.Notify()
	return inv.ID, nil
}

func (s *SQLiteStore) ListBankTransactions(ctx context.Context) ([]core.BankTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount_vnd, flow, status, suggestion_json
		FROM bank_transactions
		ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list bank transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.BankTransaction
	for rows.Next() {
		tx, err := scanBankTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *SQLiteStore) GetBankTransaction(ctx context.Context, id string) (core.BankTransaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, description, amount_vnd, flow, status, suggestion_json
		FROM bank_transactions WHERE id = ?`, id)
	tx, err := scanBankTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BankTransaction{}, store.ErrNotFound
	}
	return tx, err
}

func scanBankTransaction(scan func(...any) error) (core.BankTransaction, error) {
	var tx core.BankTransaction
	var suggestionJSON sql.NullString
	if err := scan(&tx.ID, &tx.Date, &tx.Description, &tx.Amount.VND, &tx.Flow, &tx.Status, &suggestionJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.BankTransaction{}, err
		}
		return core.BankTransaction{}, fmt.Errorf("scan bank transaction: %w", err)
	}
	if suggestionJSON.Valid && suggestionJSON.String != "" {
		var s core.BankSuggestion
		if err := json.Unmarshal([]byte(suggestionJSON.String), &s); err != nil {
			return core.BankTransaction{}, fmt.Errorf("decode bank suggestion: %w", err)
		}
		tx.Suggestion = &s
	}
	return tx, nil
}

func (s *SQLiteStore) ImportBankTransactions(ctx context.Context, txs []core.BankTransaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer dbTx.Rollback()

	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if tx.Status == "" {
			tx.Status = core.BankNew
		}
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO bank_transactions (id, date, description, amount_vnd, flow, status)
			VALUES (?, ?, ?, ?, ?, ?)`,
			tx.ID, tx.Date, tx.Description, tx.Amount.VND, tx.Flow, tx.Status); err != nil {
			return fmt.Errorf("insert bank transaction: %w", err)
		}
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Bank transactions imported", "count", len(txs))
	s.Notify()
	return nil
}

func (s *SQLiteStore) SaveBankSuggestion(ctx context.Context, id string, suggestion core.BankSuggestion) error {
	suggestionJSON, err := json.Marshal(suggestion)
	if err != nil {
		return fmt.Errorf("encode bank suggestion: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE bank_transactions SET suggestion_json = ? WHERE id = ?`,
		string(suggestionJSON), id)
	if err != nil {
		return fmt.Errorf("save bank suggestion: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) SetBankStatus(ctx context.Context, id string, status core.BankStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bank_transactions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set bank status: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) ListContracts(ctx context.Context) ([]core.Contract, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_name, contract_value, invoiced_amount, status
		FROM contracts
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []core.Contract
	for rows.Next() {
		var c core.Contract
		if err := rows.Scan(&c.ID, &c.CustomerName, &c.ContractValue, &c.InvoicedAmount, &c.Status); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (s *SQLiteStore) AppendContract(ctx context.Context, c core.Contract) (string, error) {
	c.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (id, customer_name, contract_value, invoiced_amount, status)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.CustomerName, c.ContractValue, c.InvoicedAmount, c.Status)
	if err != nil {
		return "", fmt.Errorf("insert contract: %w", err)
	}

	s.Notify()
	return c.ID, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
