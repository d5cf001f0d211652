package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ridwanfathin/invoice-extractor-service/internal/domain"
)

// MemoryInvoiceRepository keeps invoices in process memory.
// Contents are lost when the process exits.
type MemoryInvoiceRepository struct {
	mutex    sync.RWMutex
	invoices []domain.Invoice
	nextID   int64
	now      func() time.Time
}

// NewMemoryInvoiceRepository creates an empty in-memory repository
func NewMemoryInvoiceRepository() *MemoryInvoiceRepository {
	return &MemoryInvoiceRepository{
		nextID: 1,
		now:    time.Now,
	}
}

// CreateInvoice stores a copy of the invoice
func (r *MemoryInvoiceRepository) CreateInvoice(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	if err := checkContext(ctx, "create_invoice"); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored := *invoice
	stored.ID = r.nextID
	stored.CreatedAt = r.now().UTC()
	r.nextID++
	r.invoices = append(r.invoices, stored)

	created := stored
	return &created, nil
}

// ListInvoices returns copies of all stored invoices
func (r *MemoryInvoiceRepository) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	if err := checkContext(ctx, "list_invoices"); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	invoices := make([]*domain.Invoice, 0, len(r.invoices))
	for i := range r.invoices {
		inv := r.invoices[i]
		invoices = append(invoices, &inv)
	}
	return invoices, nil
}
