// Package pdftext extracts the plain text layer from PDF documents.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrInvalidPDF is returned when the data cannot be read as a PDF
	ErrInvalidPDF = errors.New("invalid PDF document")

	// ErrNoText is returned when a PDF has no extractable text, e.g. a scanned image
	ErrNoText = errors.New("no text could be extracted from PDF")
)

// Extractor turns document bytes into plain text
type Extractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// PDFExtractor reads the text layer of every page
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF text extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractText returns the text of all pages joined by newlines
func (e *PDFExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	// the pdf package panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// keep whatever the other pages yield
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
