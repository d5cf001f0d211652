package domain

import (
	"time"
)

// Field identifies one of the structured values pulled from invoice text
type Field string

// Extracted fields, in the order they are reported
const (
	FieldInvoiceNumber Field = "invoice_number"
	FieldDate          Field = "date"
	FieldDueDate       Field = "due_date"
	FieldTotal         Field = "total"
	FieldCurrency      Field = "currency"
	FieldVendor        Field = "vendor"
)

// Fields lists every extracted field
var Fields = []Field{
	FieldInvoiceNumber,
	FieldDate,
	FieldDueDate,
	FieldTotal,
	FieldCurrency,
	FieldVendor,
}

// ExtractedData is the structured record extracted from one document.
// A nil field means the value was not found; it is serialized as null,
// so every key is always present in the JSON shape.
type ExtractedData struct {
	InvoiceNumber *string `json:"invoice_number"`
	Date          *string `json:"date"`
	DueDate       *string `json:"due_date"`
	Total         *string `json:"total"`
	Currency      *string `json:"currency"`
	Vendor        *string `json:"vendor"`
}

func (d *ExtractedData) slot(field Field) **string {
	switch field {
	case FieldInvoiceNumber:
		return &d.InvoiceNumber
	case FieldDate:
		return &d.Date
	case FieldDueDate:
		return &d.DueDate
	case FieldTotal:
		return &d.Total
	case FieldCurrency:
		return &d.Currency
	case FieldVendor:
		return &d.Vendor
	}
	return nil
}

// Get returns the value of a field and whether it was found
func (d ExtractedData) Get(field Field) (string, bool) {
	p := d.slot(field)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

// Set stores a found value. Empty values are treated as not found.
func (d *ExtractedData) Set(field Field, value string) {
	p := d.slot(field)
	if p == nil {
		return
	}
	if value == "" {
		*p = nil
		return
	}
	v := value
	*p = &v
}

// FoundCount returns how many fields hold a value
func (d ExtractedData) FoundCount() int {
	n := 0
	for _, f := range Fields {
		if _, ok := d.Get(f); ok {
			n++
		}
	}
	return n
}

// Invoice is a processed upload as kept by the invoice store
type Invoice struct {
	ID            int64         `json:"id"`
	FileName      string        `json:"fileName"`
	FileSize      int64         `json:"fileSize"`
	ExtractedData ExtractedData `json:"extractedData"`
	RawText       string        `json:"rawText"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// NewInvoice creates an unsaved invoice record
func NewInvoice(fileName string, fileSize int64, data ExtractedData, rawText string) *Invoice {
	return &Invoice{
		FileName:      fileName,
		FileSize:      fileSize,
		ExtractedData: data,
		RawText:       rawText,
	}
}
