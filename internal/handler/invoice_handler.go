package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ridwanfathin/invoice-extractor-service/internal/logging"
	"github.com/ridwanfathin/invoice-extractor-service/internal/model"
	"github.com/ridwanfathin/invoice-extractor-service/internal/service"
)

// multipartOverhead is extra room for boundaries and part headers on top of the file itself
const multipartOverhead = 1 << 20

// InvoiceHandler handles HTTP requests for invoice processing
type InvoiceHandler struct {
	service       service.InvoiceService
	maxUploadSize int64
	previewLength int
	logger        logrus.FieldLogger
}

// NewInvoiceHandler creates a new invoice processing handler
func NewInvoiceHandler(svc service.InvoiceService, maxUploadSize int64, previewLength int, logger logrus.FieldLogger) *InvoiceHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 5 * 1024 * 1024
	}
	if previewLength < 0 {
		previewLength = 500
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &InvoiceHandler{
		service:       svc,
		maxUploadSize: maxUploadSize,
		previewLength: previewLength,
		logger:        logger,
	}
}

// RegisterRoutes registers the handler's routes with the given router
func (h *InvoiceHandler) RegisterRoutes(router gin.IRouter) {
	invoices := router.Group("/api/invoices")
	invoices.POST("/process", h.ProcessInvoice)
	invoices.GET("", h.ListInvoices)
}

// ProcessInvoice handles a request to process a single invoice PDF
// @Summary Process an invoice
// @Description Upload a text-based PDF invoice and extract its key fields
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice PDF file"
// @Success 200 {object} model.ProcessInvoiceResponse "Successfully processed invoice"
// @Failure 400 {object} model.ErrorResponse "Missing, oversized, non-PDF or unreadable file"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Failure 503 {object} model.ErrorResponse "Service is shutting down"
// @Router /api/invoices/process [post]
func (h *InvoiceHandler) ProcessInvoice(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)

	// Parse multipart form data
	if err := c.Request.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondBadRequest(c, ErrFileTooLarge)
			return
		}
		respondBadRequest(c, ErrFileRequired, newErrorDetail("file", err.Error()))
		return
	}

	file, header, err := getFormFile(c, "file")
	if err != nil {
		respondBadRequest(c, ErrFileRequired, newErrorDetail("file", err.Error()))
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		respondBadRequest(c, ErrFileTooLarge)
		return
	}

	if !declaresPDF(header) {
		respondBadRequest(c, ErrOnlyPDF)
		return
	}

	fileData, err := io.ReadAll(file)
	if err != nil {
		logError(h.logger, c, "read_upload", err, logrus.Fields{logging.FieldFileName: header.Filename})
		respondInternalServerError(c, ErrFileProcessing)
		return
	}

	if !isPDFContent(fileData) {
		respondBadRequest(c, ErrOnlyPDF)
		return
	}

	invoice, err := h.service.ProcessInvoice(c.Request.Context(), &model.InvoiceUpload{
		FileName: header.Filename,
		Size:     header.Size,
		Data:     fileData,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnreadableDocument):
			respondBadRequest(c, ErrUnreadablePDF)
		case errors.Is(err, service.ErrServiceClosed):
			respondServiceUnavailable(c, ErrServiceNotRunning)
		default:
			logError(h.logger, c, "process_invoice", err, logrus.Fields{
				logging.FieldFileName: header.Filename,
				logging.FieldFileSize: header.Size,
			})
			respondInternalServerError(c, ErrFileProcessing)
		}
		return
	}

	respondOK(c, model.ProcessInvoiceResponse{
		Success:  true,
		ID:       invoice.ID,
		Data:     invoice.ExtractedData,
		FileName: invoice.FileName,
		RawText:  previewText(invoice.RawText, h.previewLength),
	})
}

// ListInvoices returns every processed invoice
// @Summary List processed invoices
// @Description Get all invoices processed so far, oldest first
// @Tags invoices
// @Produce json
// @Success 200 {array} model.InvoiceResponse "Stored invoices"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.service.ListInvoices(c.Request.Context())
	if err != nil {
		logError(h.logger, c, "list_invoices", err, nil)
		respondInternalServerError(c, ErrListInvoices)
		return
	}

	respondOK(c, model.NewInvoiceListResponse(invoices))
}
