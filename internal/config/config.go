package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port         int
	MaxWorkers   int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Upload configuration
	MaxUploadSize int64
	PreviewLength int

	// Logging configuration
	LogFormat string
	LogLevel  string

	// CORS configuration
	AllowedOrigins []string

	// Storage configuration
	StoreBackend  string
	PostgresURL   string
	SQLitePath    string
	DBAutoMigrate bool

	// Document archive (optional, S3-compatible)
	ArchiveEndpoint    string
	ArchiveAccessKeyID string
	ArchiveSecretKey   string
	ArchiveBucket      string
	ArchiveRegion      string
	ArchivePrefix      string
	ArchivePublicURL   string
}

// LoadConfig loads the application configuration from environment variables
func LoadConfig() (*Config, error) {
	loadDotEnv()

	config := &Config{
		// Server configuration
		Port:         getEnvInt("PORT", 8080),
		MaxWorkers:   getEnvInt("MAX_WORKERS", 5),
		ReadTimeout:  getEnvDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 60*time.Second),

		// Upload configuration
		MaxUploadSize: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 5)) * 1024 * 1024,
		PreviewLength: getEnvInt("PREVIEW_LENGTH", 500),

		// Logging configuration
		LogFormat: getEnvString("LOG_FORMAT", "json"),
		LogLevel:  getEnvString("LOG_LEVEL", "info"),

		// CORS configuration
		AllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		// Storage configuration
		StoreBackend:  strings.ToLower(getEnvString("STORE_BACKEND", StoreMemory)),
		PostgresURL:   getEnvString("POSTGRES_DB_URL", os.Getenv("DATABASE_URL")),
		SQLitePath:    getEnvString("SQLITE_PATH", "invoices.db"),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),

		// Document archive
		ArchiveEndpoint:    getEnvString("ARCHIVE_S3_ENDPOINT", ""),
		ArchiveAccessKeyID: getEnvString("ARCHIVE_S3_ACCESS_KEY_ID", ""),
		ArchiveSecretKey:   getEnvString("ARCHIVE_S3_SECRET_ACCESS_KEY", ""),
		ArchiveBucket:      getEnvString("ARCHIVE_S3_BUCKET", ""),
		ArchiveRegion:      getEnvString("ARCHIVE_S3_REGION", "us-east-1"),
		ArchivePrefix:      getEnvString("ARCHIVE_S3_PREFIX", "invoices"),
		ArchivePublicURL:   getEnvString("ARCHIVE_S3_PUBLIC_URL", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadDotEnv loads a .env file from the project root or the working directory
func loadDotEnv() {
	execPath, err := os.Executable()
	if err != nil {
		logrus.Warnf("Could not determine executable path: %v", err)
	}

	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(execPath)))
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		// Try loading from current directory as fallback
		if err := godotenv.Load(); err != nil {
			logrus.Debug("No .env file found or error loading .env file. Using environment variables.")
		} else {
			logrus.Info("Loaded environment variables from current directory .env file")
		}
	} else {
		logrus.Infof("Loaded environment variables from %s", envPath)
	}
}

// ArchiveEnabled reports whether uploaded documents should be archived
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveBucket != ""
}

// Validate checks that the configuration can be used to start the service
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("store backend %q requires POSTGRES_DB_URL or DATABASE_URL", c.StoreBackend)
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("store backend %q requires SQLITE_PATH", c.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown store backend %q (want %s, %s or %s)", c.StoreBackend, StoreMemory, StorePostgres, StoreSQLite)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("MAX_WORKERS must be at least 1, got %d", c.MaxWorkers)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}
	if c.PreviewLength < 0 {
		return fmt.Errorf("PREVIEW_LENGTH must not be negative")
	}

	if c.ArchiveEnabled() && (c.ArchiveEndpoint == "" || c.ArchiveAccessKeyID == "" || c.ArchiveSecretKey == "") {
		return fmt.Errorf("ARCHIVE_S3_BUCKET requires ARCHIVE_S3_ENDPOINT, ARCHIVE_S3_ACCESS_KEY_ID and ARCHIVE_S3_SECRET_ACCESS_KEY")
	}

	if c.StoreBackend == StoreMemory {
		logrus.Warn("Using in-memory invoice store. Processed invoices are lost on restart.")
	}

	return nil
}

// getEnvInt gets an integer from an environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logrus.Warnf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvDuration reads a number of seconds from an environment variable
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	seconds := getEnvInt(key, -1)
	if seconds < 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}

// getEnvBool gets a boolean from an environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	valueStr = strings.ToLower(valueStr)
	return valueStr == "true" || valueStr == "1" || valueStr == "yes"
}

// getEnvString gets a string from an environment variable with a default value
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvStringSlice gets a string slice from a comma-separated environment variable
func getEnvStringSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
