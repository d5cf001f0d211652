package model

import (
	"time"

	"github.com/ridwanfathin/invoice-extractor-service/internal/domain"
)

// InvoiceUpload is an uploaded document waiting to be processed
type InvoiceUpload struct {
	FileName string
	Size     int64
	Data     []byte
}

// ProcessInvoiceResponse is returned after a document has been processed
type ProcessInvoiceResponse struct {
	Success  bool                 `json:"success"`
	ID       int64                `json:"id"`
	Data     domain.ExtractedData `json:"data"`
	FileName string               `json:"fileName"`
	RawText  string               `json:"rawText"`
}

// InvoiceResponse represents a stored invoice in list responses
type InvoiceResponse struct {
	ID            int64                `json:"id"`
	FileName      string               `json:"fileName"`
	FileSize      int64                `json:"fileSize"`
	ExtractedData domain.ExtractedData `json:"extractedData"`
	RawText       string               `json:"rawText"`
	CreatedAt     string               `json:"createdAt"`
}

// FromDomain converts a domain Invoice to an InvoiceResponse
func (dto *InvoiceResponse) FromDomain(invoice *domain.Invoice) {
	dto.ID = invoice.ID
	dto.FileName = invoice.FileName
	dto.FileSize = invoice.FileSize
	dto.ExtractedData = invoice.ExtractedData
	dto.RawText = invoice.RawText
	dto.CreatedAt = invoice.CreatedAt.UTC().Format(time.RFC3339)
}

// NewInvoiceListResponse converts stored invoices for a list response
func NewInvoiceListResponse(invoices []*domain.Invoice) []InvoiceResponse {
	resp := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i].FromDomain(inv)
	}
	return resp
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}
