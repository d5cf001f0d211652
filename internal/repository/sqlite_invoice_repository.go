package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ridwanfathin/invoice-extractor-service/internal/domain"
)

// SQLiteInvoiceRepository implements InvoiceRepository on a SQLite database
// opened with database.OpenSQLite. Timestamps are stored as RFC 3339 text.
type SQLiteInvoiceRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteInvoiceRepository creates a new SQLite invoice repository
func NewSQLiteInvoiceRepository(db *sql.DB) *SQLiteInvoiceRepository {
	return &SQLiteInvoiceRepository{
		db:  db,
		now: time.Now,
	}
}

// CreateInvoice saves a new invoice to the database
func (r *SQLiteInvoiceRepository) CreateInvoice(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	extracted, err := json.Marshal(invoice.ExtractedData)
	if err != nil {
		return nil, &RepositoryError{Op: "create_invoice", Err: fmt.Errorf("failed to encode extracted data: %w", err)}
	}

	created := *invoice
	created.CreatedAt = r.now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices (file_name, file_size, extracted_data, raw_text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, invoice.FileName, invoice.FileSize, string(extracted), invoice.RawText, created.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, &RepositoryError{Op: "create_invoice", Err: fmt.Errorf("failed to insert invoice: %w", err)}
	}

	created.ID, err = res.LastInsertId()
	if err != nil {
		return nil, &RepositoryError{Op: "create_invoice", Err: fmt.Errorf("failed to read invoice id: %w", err)}
	}

	return &created, nil
}

// ListInvoices retrieves all invoices ordered by ID
func (r *SQLiteInvoiceRepository) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, file_name, file_size, extracted_data, raw_text, created_at
		FROM invoices
		ORDER BY id
	`)
	if err != nil {
		return nil, &RepositoryError{Op: "list_invoices", Err: fmt.Errorf("failed to query invoices: %w", err)}
	}
	defer rows.Close()

	invoices := []*domain.Invoice{}
	for rows.Next() {
		var (
			inv       domain.Invoice
			extracted string
			rawText   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&inv.ID, &inv.FileName, &inv.FileSize, &extracted, &rawText, &createdAt); err != nil {
			return nil, &RepositoryError{Op: "list_invoices", Err: fmt.Errorf("failed to scan invoice: %w", err)}
		}
		if err := json.Unmarshal([]byte(extracted), &inv.ExtractedData); err != nil {
			return nil, &RepositoryError{Op: "list_invoices", Err: fmt.Errorf("failed to decode extracted data of invoice %d: %w", inv.ID, err)}
		}
		inv.RawText = rawText.String
		inv.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, &RepositoryError{Op: "list_invoices", Err: fmt.Errorf("invalid created_at of invoice %d: %w", inv.ID, err)}
		}
		invoices = append(invoices, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, &RepositoryError{Op: "list_invoices", Err: fmt.Errorf("error iterating invoices: %w", err)}
	}

	return invoices, nil
}
