package middleware

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// ErrInvalidInput marks request input the console rejects with 400.
var ErrInvalidInput = errors.New("invalid input")

// Input validation and sanitization utilities

// ValidateDocument checks an uploaded document against the size limit and extension allow-list.
// maxSize <= 0 disables the size check; an empty allow-list accepts any extension.
func ValidateDocument(name string, size, maxSize int64, allowed []string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: document name cannot be empty", ErrInvalidInput)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: invalid characters in document name", ErrInvalidInput)
	}
	if size == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidInput, name)
	}
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("%w: %s is %s, the limit is %s", ErrInvalidInput, name,
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(maxSize)))
	}

	if len(allowed) == 0 {
		return nil
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s has an unsupported type (allowed: %s)", ErrInvalidInput, name, strings.Join(allowed, ", "))
}

// ValidateFieldName only accepts plain form field names
func ValidateFieldName(name string) error {
	if name == "" || len(name) > 64 {
		return fmt.Errorf("%w: field name must be 1-64 characters", ErrInvalidInput)
	}
	for _, r := range name {
		if !(r == '_' || r == '-' || r == '.' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return fmt.Errorf("%w: invalid field name %q", ErrInvalidInput, name)
		}
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateSubmissionID validates submission ID format (uuid)
func ValidateSubmissionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: submission ID cannot be empty", ErrInvalidInput)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid submission ID format", ErrInvalidInput)
	}
	return nil
}

// ValidatePage parses a 1-based page number, defaulting to 1
func ValidatePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
