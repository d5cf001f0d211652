package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ridwanfathin/invoice-extractor-service/internal/logging"
)

// sensitiveFields contains patterns for fields that should be redacted
var sensitiveFields = []string{
	"password",
	"token",
	"api_key",
	"apikey",
	"api-key",
	"secret",
	"authorization",
	"credential",
	"session",
	"cookie",
}

// sensitiveHeaderPatterns contains regex patterns for sensitive headers
var sensitiveHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)authorization`),
	regexp.MustCompile(`(?i)api[-_]?key`),
	regexp.MustCompile(`(?i)token`),
	regexp.MustCompile(`(?i)secret`),
	regexp.MustCompile(`(?i)password`),
	regexp.MustCompile(`(?i)cookie`),
	regexp.MustCompile(`(?i)session`),
}

const defaultMaxBodyLog = 4096

// responseWriter captures up to limit bytes of the response body
type responseWriter struct {
	gin.ResponseWriter
	body  *bytes.Buffer
	limit int
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if room := w.limit - w.body.Len(); room > 0 {
		if len(b) > room {
			w.body.Write(b[:room])
		} else {
			w.body.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// LoggerConfig holds configuration for the logger middleware
type LoggerConfig struct {
	Logger     logrus.FieldLogger
	MaxBodyLog int // bytes of request/response body kept in the log entry
}

// RequestResponseLogger creates a middleware that logs all API requests and responses.
// Multipart bodies (uploaded documents) are never buffered or logged.
func RequestResponseLogger(config LoggerConfig) gin.HandlerFunc {
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	maxBody := config.MaxBodyLog
	if maxBody <= 0 {
		maxBody = defaultMaxBodyLog
	}

	return func(c *gin.Context) {
		startTime := time.Now()

		var requestBody []byte
		multipart := strings.HasPrefix(c.ContentType(), "multipart/")
		if c.Request.Body != nil && !multipart {
			requestBody, _ = io.ReadAll(c.Request.Body)
			// Restore the body for the next handler
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		responseBodyWriter := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
			limit:          maxBody,
		}
		c.Writer = responseBodyWriter

		c.Next()

		fields := buildLogFields(c, requestBody, responseBodyWriter.body.Bytes(), maxBody, time.Since(startTime))
		if multipart {
			fields["request_body"] = "[multipart body omitted]"
		}

		entry := logger.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request completed")
		case status >= 400:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}

// buildLogFields constructs the structured fields of a request log entry
func buildLogFields(c *gin.Context, requestBody, responseBody []byte, maxBody int, latency time.Duration) logrus.Fields {
	fields := logrus.Fields{
		"method":      c.Request.Method,
		"path":        c.Request.URL.Path,
		"status_code": c.Writer.Status(),
		"latency":     latency.String(),
		"client_ip":   c.ClientIP(),
		"user_agent":  c.Request.UserAgent(),
		"headers":     redactHeaders(c.Request.Header),
	}

	if query := c.Request.URL.Query(); len(query) > 0 {
		fields["query_params"] = query
	}

	if requestID := c.GetString(RequestIDKey); requestID != "" {
		fields[logging.FieldRequestID] = requestID
	}

	if len(requestBody) > 0 {
		fields["request_body"] = parseAndRedactBody(requestBody, maxBody)
	}

	if len(responseBody) > 0 {
		fields["response_body"] = parseAndRedactBody(responseBody, maxBody)
	}

	if len(c.Errors) > 0 {
		fields["error"] = c.Errors.String()
	}

	return fields
}

// redactHeaders redacts sensitive headers
func redactHeaders(headers map[string][]string) map[string]string {
	redacted := make(map[string]string)
	for key, values := range headers {
		if isSensitiveHeader(key) {
			redacted[key] = "[REDACTED]"
		} else {
			redacted[key] = strings.Join(values, ", ")
		}
	}
	return redacted
}

// isSensitiveHeader checks if a header name is sensitive
func isSensitiveHeader(headerName string) bool {
	for _, pattern := range sensitiveHeaderPatterns {
		if pattern.MatchString(headerName) {
			return true
		}
	}
	return false
}

// parseAndRedactBody parses JSON body and redacts sensitive fields
func parseAndRedactBody(body []byte, maxBody int) interface{} {
	var jsonBody interface{}
	if err := json.Unmarshal(body, &jsonBody); err != nil {
		// Not JSON (or cut off by the capture limit)
		bodyStr := string(body)
		if len(bodyStr) > maxBody {
			bodyStr = bodyStr[:maxBody] + "... (truncated)"
		}
		return bodyStr
	}

	redactSensitiveFields(jsonBody)
	return jsonBody
}

// redactSensitiveFields recursively redacts sensitive fields in JSON data
func redactSensitiveFields(data interface{}) {
	switch v := data.(type) {
	case map[string]interface{}:
		for key, value := range v {
			if isSensitiveField(key) {
				v[key] = "[REDACTED]"
			} else {
				redactSensitiveFields(value)
			}
		}
	case []interface{}:
		for _, item := range v {
			redactSensitiveFields(item)
		}
	}
}

// isSensitiveField checks if a field name is sensitive
func isSensitiveField(fieldName string) bool {
	lowerField := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFields {
		if strings.Contains(lowerField, sensitive) {
			return true
		}
	}
	return false
}
