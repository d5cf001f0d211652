package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ridwanfathin/invoice-extractor-service/internal/domain"
)

// PostgresInvoiceRepository implements InvoiceRepository using PostgreSQL
type PostgresInvoiceRepository struct {
	db *pgxpool.Pool
}

// NewPostgresInvoiceRepository creates a new PostgreSQL invoice repository
func NewPostgresInvoiceRepository(db *pgxpool.Pool) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{
		db: db,
	}
}

// CreateInvoice saves a new invoice to the database
func (r *PostgresInvoiceRepository) CreateInvoice(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	extracted, err := json.Marshal(invoice.ExtractedData)
	if err != nil {
		return nil, &RepositoryError{Op: "create_invoice", Err: fmt.Errorf("failed to encode extracted data: %w", err)}
	}

	created := *invoice
	err = r.db.QueryRow(ctx, `
		INSERT INTO invoices (file_name, file_size, extracted_data, raw_text)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, invoice.FileName, invoice.FileSize, extracted, invoice.RawText).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, &RepositoryError{Op: "create_invoice", Err: fmt.Errorf("failed to insert invoice: %w", err)}
	}

	return &created, nil
}

// ListInvoices retrieves all invoices ordered by ID
func (r *PostgresInvoiceRepository) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	rows, err := r.db.Query(ctx, `
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
			extracted []byte
			rawText   *string
		)
		if err := rows.Scan(&inv.ID, &inv.FileName, &inv.FileSize, &extracted, &rawText, &inv.CreatedAt); err != nil {
			return nil, &RepositoryError{Op: "list_invoices", Err: fmt.Errorf("failed to scan invoice: %w", err)}
		}
		if err := json.Unmarshal(extracted, &inv.ExtractedData); err != nil {
			return nil, &RepositoryError{Op: "list_invoices", Err: fmt.Errorf("failed to decode extracted data of invoice %d: %w", inv.ID, err)}
		}
		if rawText != nil {
			inv.RawText = *rawText
		}
		invoices = append(invoices, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, &RepositoryError{Op: "list_invoices", Err: fmt.Errorf("error iterating invoices: %w", err)}
	}

	return invoices, nil
}
