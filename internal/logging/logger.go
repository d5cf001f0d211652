// Package logging configures the structured logger shared by the service.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Standard field names used across log entries
const (
	FieldRequestID = "request_id"
	FieldFileName  = "file_name"
	FieldFileSize  = "file_size"
	FieldInvoiceID = "invoice_id"
	FieldOperation = "operation"
	FieldBackend   = "backend"
	FieldDuration  = "duration_ms"
	FieldFound     = "fields_found"
	FieldTextChars = "text_chars"
)

// New creates a logrus logger writing to stdout.
//
// format is "json" or "pretty"; level is any level accepted by logrus.ParseLevel.
// An unknown level falls back to info.
func New(format, level string) *logrus.Logger {
	return NewWithOutput(os.Stdout, format, level)
}

// NewWithOutput is New with an explicit destination
func NewWithOutput(out io.Writer, format, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	logLevel, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.EqualFold(format, "pretty") || strings.EqualFold(format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// Discard returns a logger that drops everything, for tests and tools
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
