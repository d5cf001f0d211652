package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "MAX_WORKERS", "READ_TIMEOUT", "WRITE_TIMEOUT", "MAX_UPLOAD_SIZE_MB",
		"PREVIEW_LENGTH", "LOG_FORMAT", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS",
		"STORE_BACKEND", "POSTGRES_DB_URL", "DATABASE_URL", "SQLITE_PATH", "DB_AUTO_MIGRATE",
		"ARCHIVE_S3_BUCKET", "ARCHIVE_S3_PREFIX",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5, cfg.MaxWorkers)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadSize)
	assert.Equal(t, 500, cfg.PreviewLength)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.True(t, cfg.DBAutoMigrate)
	assert.False(t, cfg.ArchiveEnabled())
	assert.Equal(t, "invoices", cfg.ArchivePrefix)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_UPLOAD_SIZE_MB", "2")
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DB_AUTO_MIGRATE", "no")
	t.Setenv("WRITE_TIMEOUT", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, int64(2*1024*1024), cfg.MaxUploadSize)
	assert.Equal(t, StoreSQLite, cfg.StoreBackend)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.DBAutoMigrate)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
}

func TestLoadConfigDatabaseURLFallback(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DB_URL", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/invoices")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/invoices", cfg.PostgresURL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: 8080, MaxWorkers: 1, MaxUploadSize: 1, StoreBackend: StoreMemory}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"memory ok", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.StoreBackend = "redis" }, "unknown store backend"},
		{"postgres without url", func(c *Config) { c.StoreBackend = StorePostgres }, "requires POSTGRES_DB_URL"},
		{"sqlite without path", func(c *Config) { c.StoreBackend = StoreSQLite }, "requires SQLITE_PATH"},
		{"bad port", func(c *Config) { c.Port = 0 }, "invalid port"},
		{"no workers", func(c *Config) { c.MaxWorkers = 0 }, "MAX_WORKERS"},
		{"negative preview", func(c *Config) { c.PreviewLength = -1 }, "PREVIEW_LENGTH"},
		{"archive without credentials", func(c *Config) { c.ArchiveBucket = "invoices" }, "ARCHIVE_S3_ENDPOINT"},
		{"archive ok", func(c *Config) {
			c.ArchiveBucket = "invoices"
			c.ArchiveEndpoint = "http://localhost:9000"
			c.ArchiveAccessKeyID = "key"
			c.ArchiveSecretKey = "secret"
		}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestGetEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))
}
