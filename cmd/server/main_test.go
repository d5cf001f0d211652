package main

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/invoice-extractor-service/internal/config"
	"github.com/ridwanfathin/invoice-extractor-service/internal/logging"
	"github.com/ridwanfathin/invoice-extractor-service/internal/repository"
)

func TestRunClosesStoreWhenArchiveSetupFails(t *testing.T) {
	closed := 0
	original := storeOpener
	storeOpener = func(*config.Config, logrus.FieldLogger) (repository.InvoiceRepository, func(), error) {
		return repository.NewMemoryInvoiceRepository(), func() { closed++ }, nil
	}
	t.Cleanup(func() { storeOpener = original })

	cfg := &config.Config{
		Port:          8080,
		MaxWorkers:    1,
		MaxUploadSize: 1024,
		StoreBackend:  config.StoreMemory,
		ArchiveBucket: "invoices", // no endpoint or credentials
	}

	err := run(cfg, logging.Discard())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document archive")
	assert.Equal(t, 1, closed)
}

func TestOpenStore(t *testing.T) {
	repo, closeStore, err := openStore(&config.Config{StoreBackend: config.StoreMemory}, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &repository.MemoryInvoiceRepository{}, repo)
	closeStore()

	repo, closeStore, err = openStore(&config.Config{
		StoreBackend: config.StoreSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "invoices.db"),
	}, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &repository.SQLiteInvoiceRepository{}, repo)
	closeStore()

	_, _, err = openStore(&config.Config{StoreBackend: "redis"}, logging.Discard())
	assert.Error(t, err)
}
