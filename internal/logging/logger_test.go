package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "json", "debug")

	logger.WithField(FieldFileName, "a.pdf").Debug("processing")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "processing", entry["msg"])
	assert.Equal(t, "a.pdf", entry[FieldFileName])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "pretty", "info")

	logger.Info("hello")

	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	assert.Contains(t, buf.String(), "hello")
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "json", "chatty")

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("dropped") })
}
