package handler

import (
	"fmt"
	"mime"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ridwanfathin/invoice-extractor-service/internal/logging"
	"github.com/ridwanfathin/invoice-extractor-service/internal/middleware"
)

const pdfMIME = "application/pdf"

// getFormFile retrieves a file from multipart form data
func getFormFile(c *gin.Context, fieldName string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := c.Request.FormFile(fieldName)
	if err != nil {
		return nil, nil, fmt.Errorf("no %s provided", fieldName)
	}
	return file, header, nil
}

// declaresPDF reports whether the part's Content-Type header is application/pdf
func declaresPDF(header *multipart.FileHeader) bool {
	mediaType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	return err == nil && mediaType == pdfMIME
}

// isPDFContent sniffs the uploaded bytes
func isPDFContent(data []byte) bool {
	return mimetype.Detect(data).Is(pdfMIME)
}

// previewText returns the first n characters of text, marking a cut with "..."
func previewText(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

// logError logs a handler failure with the request's identifying fields
func logError(logger logrus.FieldLogger, c *gin.Context, event string, err error, fields logrus.Fields) {
	entry := logger.WithFields(fields).WithFields(logrus.Fields{
		logging.FieldOperation: event,
		"path":                 c.Request.URL.Path,
	})
	if requestID := c.GetString(middleware.RequestIDKey); requestID != "" {
		entry = entry.WithField(logging.FieldRequestID, requestID)
	}
	entry.WithError(err).Error("request failed")
}
