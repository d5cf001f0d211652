package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ridwanfathin/invoice-extractor-service/internal/config"
	"github.com/ridwanfathin/invoice-extractor-service/internal/database"
	"github.com/ridwanfathin/invoice-extractor-service/internal/extraction"
	"github.com/ridwanfathin/invoice-extractor-service/internal/handler"
	"github.com/ridwanfathin/invoice-extractor-service/internal/logging"
	"github.com/ridwanfathin/invoice-extractor-service/internal/pdftext"
	"github.com/ridwanfathin/invoice-extractor-service/internal/repository"
	"github.com/ridwanfathin/invoice-extractor-service/internal/server"
	"github.com/ridwanfathin/invoice-extractor-service/internal/service"
	"github.com/ridwanfathin/invoice-extractor-service/internal/storage"
)

const startupTimeout = 30 * time.Second

// @title Invoice Extractor API
// @version 1.0
// @description Extracts invoice number, dates, total, currency and vendor from text-based PDF invoices.
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server error")
	}

	logger.Info("Server shutdown complete")
}

// storeOpener is swapped in tests
var storeOpener = openStore

// run wires the service and blocks until the server stops. Everything it
// opens is closed before it returns.
func run(cfg *config.Config, logger logrus.FieldLogger) error {
	// Initialize repository
	logger.WithField(logging.FieldBackend, cfg.StoreBackend).Info("Initializing invoice store...")
	repo, closeStore, err := storeOpener(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize invoice store: %w", err)
	}
	defer closeStore()

	// Create invoice service
	invoiceService := service.NewInvoiceService(
		pdftext.NewPDFExtractor(),
		extraction.NewEngine(),
		repo,
		cfg.MaxWorkers,
		logger,
	)

	if cfg.ArchiveEnabled() {
		archive, err := storage.NewS3Archive(&storage.Config{
			Endpoint:        cfg.ArchiveEndpoint,
			AccessKeyID:     cfg.ArchiveAccessKeyID,
			AccessKeySecret: cfg.ArchiveSecretKey,
			Bucket:          cfg.ArchiveBucket,
			Region:          cfg.ArchiveRegion,
			Prefix:          cfg.ArchivePrefix,
			PublicBaseURL:   cfg.ArchivePublicURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize document archive: %w", err)
		}
		invoiceService.SetArchive(archive)
		logger.WithField("bucket", cfg.ArchiveBucket).Info("Document archive enabled")
	}

	// Create handler
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, cfg.MaxUploadSize, cfg.PreviewLength, logger)

	// Create and configure server
	appServer := server.NewServer(cfg, invoiceHandler, invoiceService, logger)

	// Start server (blocking call)
	return appServer.Start()
}

// openStore builds the repository selected by STORE_BACKEND and returns its cleanup func
func openStore(cfg *config.Config, logger logrus.FieldLogger) (repository.InvoiceRepository, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := database.NewPostgresDB(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.DBAutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, nil, err
			}
			logger.Info("Database migrations applied")
		}
		return repository.NewPostgresInvoiceRepository(db.GetPool()), db.Close, nil

	case config.StoreSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.WithField("path", cfg.SQLitePath).Info("SQLite store opened")
		return repository.NewSQLiteInvoiceRepository(db), func() { _ = db.Close() }, nil

	case config.StoreMemory:
		return repository.NewMemoryInvoiceRepository(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
