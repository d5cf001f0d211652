package repository

import (
	"context"
	"fmt"

	"github.com/ridwanfathin/invoice-extractor-service/internal/domain"
)

// InvoiceRepository defines the interface for invoice data storage operations
type InvoiceRepository interface {
	// CreateInvoice stores a processed invoice and returns it with its ID and creation time set
	CreateInvoice(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error)

	// ListInvoices returns every stored invoice in creation order
	ListInvoices(ctx context.Context) ([]*domain.Invoice, error)
}

// RepositoryError represents an error that occurred within a repository
type RepositoryError struct {
	// Op is the operation that failed
	Op string

	// Err is the underlying error
	Err error
}

// Error returns a string representation of the error
func (e *RepositoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

// Unwrap returns the underlying error
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// checkContext fails fast when the caller has already given up
func checkContext(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return &RepositoryError{Op: op, Err: ctx.Err()}
	default:
		return nil
	}
}
