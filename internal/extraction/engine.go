// Package extraction turns plain invoice text into a structured record using
// a fixed set of deterministic pattern rules.
//
// Extraction is a pure function of its input: it performs no I/O, keeps no
// state between calls and is safe for concurrent use. A field that cannot be
// found is reported as absent, never as an error.
package extraction

import (
	"strings"

	"github.com/ridwanfathin/invoice-extractor-service/internal/domain"
)

// Engine applies a set of independent matchers to document text
type Engine struct {
	matchers []Matcher
}

var defaultEngine = NewEngine()

// NewEngine creates an engine. With no matchers the default rule set is used.
func NewEngine(matchers ...Matcher) *Engine {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	ms := make([]Matcher, len(matchers))
	copy(ms, matchers)
	return &Engine{matchers: ms}
}

// Extract runs the default rule set over text
func Extract(text string) domain.ExtractedData {
	return defaultEngine.Extract(text)
}

// Normalize converts CRLF line endings to LF
func Normalize(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// Extract normalizes text and applies each matcher once
func (e *Engine) Extract(text string) domain.ExtractedData {
	clean := Normalize(text)

	var data domain.ExtractedData
	for _, m := range e.matchers {
		if value, ok := apply(m, clean); ok {
			data.Set(m.Field, value)
		}
	}
	return data
}

// apply runs a single matcher; a panicking matcher counts as no match
func apply(m Matcher, text string) (value string, ok bool) {
	if m.Match == nil {
		return "", false
	}
	defer func() {
		if r := recover(); r != nil {
			value, ok = "", false
		}
	}()
	return m.Match(text)
}
