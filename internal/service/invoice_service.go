package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ridwanfathin/invoice-extractor-service/internal/domain"
	"github.com/ridwanfathin/invoice-extractor-service/internal/extraction"
	"github.com/ridwanfathin/invoice-extractor-service/internal/logging"
	"github.com/ridwanfathin/invoice-extractor-service/internal/model"
	"github.com/ridwanfathin/invoice-extractor-service/internal/pdftext"
	"github.com/ridwanfathin/invoice-extractor-service/internal/repository"
	"github.com/ridwanfathin/invoice-extractor-service/internal/storage"
)

var (
	// ErrUnreadableDocument means no text could be pulled from the upload
	ErrUnreadableDocument = errors.New("could not extract text from document")

	// ErrServiceClosed is returned for work submitted after Shutdown
	ErrServiceClosed = errors.New("invoice service is shutting down")
)

// InvoiceService defines the invoice processing use cases
type InvoiceService interface {
	// ProcessInvoice extracts text and fields from an uploaded PDF and stores the result
	ProcessInvoice(ctx context.Context, upload *model.InvoiceUpload) (*domain.Invoice, error)

	// ListInvoices returns previously processed invoices
	ListInvoices(ctx context.Context) ([]*domain.Invoice, error)

	// Shutdown stops accepting work and waits for in-flight processing
	Shutdown(ctx context.Context) error
}

// InvoiceProcessingError represents an error that occurred during invoice processing
type InvoiceProcessingError struct {
	// Op is the operation that failed
	Op string

	// Err is the underlying error
	Err error
}

// Error returns a string representation of the error
func (e *InvoiceProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

// Unwrap returns the underlying error
func (e *InvoiceProcessingError) Unwrap() error {
	return e.Err
}

// InvoiceServiceImpl implements the InvoiceService interface
type InvoiceServiceImpl struct {
	extractor  pdftext.Extractor
	engine     *extraction.Engine
	repository repository.InvoiceRepository
	archive    storage.DocumentArchive
	workerPool chan struct{}
	closed     atomic.Bool
	logger     logrus.FieldLogger
}

// NewInvoiceService creates a new InvoiceService. maxWorkers bounds how many
// documents are processed at the same time.
func NewInvoiceService(extractor pdftext.Extractor, engine *extraction.Engine, repo repository.InvoiceRepository, maxWorkers int, logger logrus.FieldLogger) *InvoiceServiceImpl {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if engine == nil {
		engine = extraction.NewEngine()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &InvoiceServiceImpl{
		extractor:  extractor,
		engine:     engine,
		repository: repo,
		workerPool: make(chan struct{}, maxWorkers),
		logger:     logger,
	}
}

// SetArchive enables keeping a copy of every readable upload
func (s *InvoiceServiceImpl) SetArchive(archive storage.DocumentArchive) {
	s.archive = archive
}

// ProcessInvoice runs text extraction, field extraction and persistence
func (s *InvoiceServiceImpl) ProcessInvoice(ctx context.Context, upload *model.InvoiceUpload) (*domain.Invoice, error) {
	if s.closed.Load() {
		return nil, &InvoiceProcessingError{Op: "acquire_worker", Err: ErrServiceClosed}
	}

	// Acquire worker from pool
	select {
	case s.workerPool <- struct{}{}:
		defer func() {
			<-s.workerPool
		}()
	case <-ctx.Done():
		return nil, &InvoiceProcessingError{
			Op:  "acquire_worker",
			Err: ctx.Err(),
		}
	}

	start := time.Now()
	log := s.logger.WithFields(logrus.Fields{
		logging.FieldFileName: upload.FileName,
		logging.FieldFileSize: upload.Size,
	})

	text, err := s.extractor.ExtractText(ctx, upload.Data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &InvoiceProcessingError{Op: "extract_text", Err: ctxErr}
		}
		log.WithError(err).Warn("Text extraction failed")
		return nil, &InvoiceProcessingError{
			Op:  "extract_text",
			Err: fmt.Errorf("%w: %w", ErrUnreadableDocument, err),
		}
	}

	data := s.engine.Extract(text)

	if s.archive != nil {
		// Archiving is best effort and never fails the request
		if location, err := s.archive.Store(ctx, upload.FileName, upload.Data); err != nil {
			log.WithError(err).Warn("Failed to archive document")
		} else {
			log = log.WithField("archive_location", location)
		}
	}

	invoice := domain.NewInvoice(upload.FileName, upload.Size, data, sanitizeText(text))
	created, err := s.repository.CreateInvoice(ctx, invoice)
	if err != nil {
		log.WithError(err).Error("Failed to store invoice")
		return nil, &InvoiceProcessingError{
			Op:  "store_invoice",
			Err: err,
		}
	}

	log.WithFields(logrus.Fields{
		logging.FieldInvoiceID: created.ID,
		logging.FieldFound:     data.FoundCount(),
		logging.FieldTextChars: len(text),
		logging.FieldDuration:  time.Since(start).Milliseconds(),
	}).Info("Invoice processed")

	return created, nil
}

// ListInvoices returns all stored invoices
func (s *InvoiceServiceImpl) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	invoices, err := s.repository.ListInvoices(ctx)
	if err != nil {
		return nil, &InvoiceProcessingError{Op: "list_invoices", Err: err}
	}
	return invoices, nil
}

// Shutdown rejects new work and blocks until every worker slot is free
func (s *InvoiceServiceImpl) Shutdown(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}

	for i := 0; i < cap(s.workerPool); i++ {
		select {
		case s.workerPool <- struct{}{}:
		case <-ctx.Done():
			return fmt.Errorf("waiting for in-flight invoices: %w", ctx.Err())
		}
	}
	return nil
}

// sanitizeText makes extracted text safe to store in a TEXT column
func sanitizeText(text string) string {
	text = strings.ToValidUTF8(text, "\uFFFD")
	return strings.ReplaceAll(text, "\x00", "")
}
