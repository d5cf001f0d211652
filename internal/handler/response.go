package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ridwanfathin/invoice-extractor-service/internal/model"
)

// HTTP status codes as constants for consistency
const (
	StatusOK                  = http.StatusOK
	StatusBadRequest          = http.StatusBadRequest
	StatusInternalServerError = http.StatusInternalServerError
	StatusServiceUnavailable  = http.StatusServiceUnavailable
)

// Common error messages
const (
	ErrFileRequired      = "No file uploaded"
	ErrFileTooLarge      = "File size exceeds limit"
	ErrOnlyPDF           = "Only PDF files are allowed"
	ErrUnreadablePDF     = "Could not extract text from this PDF. Make sure it's a text-based PDF (not a scanned image)."
	ErrFileProcessing    = "Failed to process invoice"
	ErrListInvoices      = "Failed to fetch invoices"
	ErrServiceNotRunning = "Service is shutting down"
)

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, message string, details ...model.ErrorDetail) {
	response := model.ErrorResponse{
		Status:  http.StatusText(statusCode),
		Message: message,
		Details: details,
	}
	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...model.ErrorDetail) {
	respondWithError(c, StatusBadRequest, message, details...)
}

// respondInternalServerError sends a 500 Internal Server Error response
func respondInternalServerError(c *gin.Context, message string) {
	respondWithError(c, StatusInternalServerError, message)
}

func respondServiceUnavailable(c *gin.Context, message string) {
	respondWithError(c, StatusServiceUnavailable, message)
}

// respondOK sends a 200 OK response with data
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(StatusOK, data)
}

// newErrorDetail creates a new error detail
func newErrorDetail(field, message string) model.ErrorDetail {
	return model.ErrorDetail{
		Field:   field,
		Message: message,
	}
}
