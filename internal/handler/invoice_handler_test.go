package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/invoice-extractor-service/internal/domain"
	"github.com/ridwanfathin/invoice-extractor-service/internal/model"
	"github.com/ridwanfathin/invoice-extractor-service/internal/service"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type stubService struct {
	invoice  *domain.Invoice
	invoices []*domain.Invoice
	err      error
	uploads  []*model.InvoiceUpload
}

func (s *stubService) ProcessInvoice(_ context.Context, upload *model.InvoiceUpload) (*domain.Invoice, error) {
	s.uploads = append(s.uploads, upload)
	if s.err != nil {
		return nil, s.err
	}
	return s.invoice, nil
}

func (s *stubService) ListInvoices(context.Context) ([]*domain.Invoice, error) {
	return s.invoices, s.err
}

func (s *stubService) Shutdown(context.Context) error { return nil }

func setupRouter(svc service.InvoiceService, maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewInvoiceHandler(svc, maxUpload, 500, nil).RegisterRoutes(router)
	return router
}

func uploadRequest(t *testing.T, field, fileName, contentType string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fileName))
	partHeader.Set("Content-Type", contentType)
	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/invoices/process", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestProcessInvoiceSuccess(t *testing.T) {
	data := domain.ExtractedData{}
	data.Set(domain.FieldInvoiceNumber, "INV-2024-001")
	data.Set(domain.FieldTotal, "1,250.00")
	data.Set(domain.FieldCurrency, "USD")
	svc := &stubService{invoice: &domain.Invoice{
		ID:            7,
		FileName:      "acme.pdf",
		FileSize:      int64(len(pdfBytes)),
		ExtractedData: data,
		RawText:       strings.Repeat("x", 600),
	}}
	router := setupRouter(svc, 1024)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "file", "acme.pdf", "application/pdf", pdfBytes))

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(7), resp["id"])
	assert.Equal(t, "acme.pdf", resp["fileName"])
	assert.Equal(t, strings.Repeat("x", 500)+"...", resp["rawText"])

	fields := resp["data"].(map[string]interface{})
	assert.Len(t, fields, 6)
	assert.Equal(t, "INV-2024-001", fields["invoice_number"])
	assert.Equal(t, "1,250.00", fields["total"])
	assert.Nil(t, fields["vendor"])
	assert.Contains(t, fields, "due_date")

	require.Len(t, svc.uploads, 1)
	assert.Equal(t, "acme.pdf", svc.uploads[0].FileName)
	assert.Equal(t, pdfBytes, svc.uploads[0].Data)
}

func TestProcessInvoiceRejectsBadUploads(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		message string
	}{
		{
			name: "missing file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "document", "a.pdf", "application/pdf", pdfBytes)
			},
			message: ErrFileRequired,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/invoices/process", strings.NewReader("{}"))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			message: ErrFileRequired,
		},
		{
			name: "declared type is not pdf",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "a.png", "image/png", pdfBytes)
			},
			message: ErrOnlyPDF,
		},
		{
			name: "content is not pdf",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "fake.pdf", "application/pdf", []byte("just some text"))
			},
			message: ErrOnlyPDF,
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				big := append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte("a"), 2048)...)
				return uploadRequest(t, "file", "big.pdf", "application/pdf", big)
			},
			message: ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			router := setupRouter(svc, 1024)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, tt.req(t))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, "Bad Request", resp.Status)
			assert.Equal(t, tt.message, resp.Message)
			assert.Empty(t, svc.uploads, "rejected uploads never reach the service")
		})
	}
}

func TestProcessInvoiceServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "unreadable document",
			err:     &service.InvoiceProcessingError{Op: "extract_text", Err: fmt.Errorf("%w: no text", service.ErrUnreadableDocument)},
			status:  http.StatusBadRequest,
			message: ErrUnreadablePDF,
		},
		{
			name:    "shutting down",
			err:     &service.InvoiceProcessingError{Op: "acquire_worker", Err: service.ErrServiceClosed},
			status:  http.StatusServiceUnavailable,
			message: ErrServiceNotRunning,
		},
		{
			name:    "storage failure",
			err:     &service.InvoiceProcessingError{Op: "store_invoice", Err: errors.New("connection refused")},
			status:  http.StatusInternalServerError,
			message: ErrFileProcessing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&stubService{err: tt.err}, 1024)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, uploadRequest(t, "file", "a.pdf", "application/pdf", pdfBytes))

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.message, resp.Message)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestListInvoices(t *testing.T) {
	data := domain.ExtractedData{}
	data.Set(domain.FieldVendor, "Acme Corp")
	created := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	svc := &stubService{invoices: []*domain.Invoice{
		{ID: 1, FileName: "a.pdf", FileSize: 10, ExtractedData: data, RawText: "Acme Corp", CreatedAt: created},
		{ID: 2, FileName: "b.pdf", FileSize: 20, CreatedAt: created},
	}}
	router := setupRouter(svc, 1024)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invoices", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp []model.InvoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, int64(1), resp[0].ID)
	assert.Equal(t, "2024-03-15T10:30:00Z", resp[0].CreatedAt)
	vendor, ok := resp[0].ExtractedData.Get(domain.FieldVendor)
	assert.True(t, ok)
	assert.Equal(t, "Acme Corp", vendor)
	assert.Equal(t, "b.pdf", resp[1].FileName)
}

func TestListInvoicesEmpty(t *testing.T) {
	router := setupRouter(&stubService{}, 1024)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invoices", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestListInvoicesFailure(t *testing.T) {
	router := setupRouter(&stubService{err: errors.New("db down")}, 1024)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invoices", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ErrListInvoices, decodeError(t, w).Message)
}

func TestPreviewText(t *testing.T) {
	assert.Equal(t, "short", previewText("short", 500))
	assert.Equal(t, "ab...", previewText("abc", 2))
	assert.Equal(t, "éé...", previewText("ééé", 2), "counts characters, not bytes")
	assert.Equal(t, "", previewText("", 0))
}
