// Package logging provides logging utilities including sensitive data filtering.
// Worker inputs and artifacts pass through the engine opaquely and may carry
// credential material; the hooks and writers here make sure such values are
// never written to log files.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns contains compiled regular expressions for detecting sensitive values.
// These patterns match common API key, token, and credential formats that tend to
// appear in worker payloads.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// Generic API keys (api_key, apikey, api-key followed by value)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*["']?([a-zA-Z0-9_-]{16,})["']?`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_-]{20,}`),

	// Authorization headers with tokens
	regexp.MustCompile(`(?i)authorization\s*[:=]\s*["']?[a-zA-Z0-9_-]{20,}["']?`),

	// Generic secret patterns (secret, password, credential, token with values)
	regexp.MustCompile(`(?i)(secret|password|credential|passwd|pwd)\s*[:=]\s*["']?[^\s"']{8,}["']?`),

	// SSH private keys
	regexp.MustCompile(`(?i)-----BEGIN[A-Z\s]+PRIVATE KEY-----`),

	// Base64-encoded secrets that look like tokens (long alphanumeric strings)
	regexp.MustCompile(`(?i)(token|auth)\s*[:=]\s*["']?[a-zA-Z0-9+/=]{32,}["']?`),
}

// sensitiveFieldNames contains field names that should always have their values redacted.
// Case-insensitive matching is performed.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"api_key",
	"apikey",
	"api-key",
	"auth_token",
	"password",
	"passwd",
	"secret",
	"credential",
	"credentials",
	"private_key",
	"access_token",
	"refresh_token",
	"bearer",
	"authorization",
}

// SensitiveDataHook is a zerolog hook that flags log entries containing
// sensitive data. Zerolog hooks cannot rewrite the message, so the actual
// redaction happens at call sites via SafeValue and on disk via
// FilteringWriter; the hook marks entries that slipped through.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData checks if a string contains any sensitive data patterns.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces any matches of sensitive patterns with
// [REDACTED]. Use when logging potentially sensitive values such as worker
// inputs or artifacts.
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName checks if a field name indicates sensitive data.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if lowerName == sensitive || strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns a filtered value for a field, redacting the whole value
// when the field name itself indicates sensitive data.
//
// Usage:
//
//	log.Info().Str("input", logging.SafeValue("input", payload)).Msg("dispatching task")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
// This is used to wrap log file writers so credential material in worker
// payloads is never persisted, even if it appears in log messages.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter that wraps the given writer.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering sensitive data before writing.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	_, err = fw.w.Write([]byte(filtered))
	if err != nil {
		return 0, err
	}
	// Return original length so callers don't observe a short write.
	return len(p), nil
}
