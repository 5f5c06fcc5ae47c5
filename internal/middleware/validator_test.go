package middleware

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDocument(t *testing.T) {
	allowed := []string{"pdf", "jpg", "jpeg", "png"}
	const limit = 10 * 1024 * 1024

	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr string
	}{
		{name: "pdf ok", file: "lease.pdf", size: 1024},
		{name: "upper case extension", file: "SCAN.PNG", size: 1024},
		{name: "too large", file: "big.pdf", size: limit + 1, wantErr: "10 MiB"},
		{name: "wrong type", file: "notes.docx", size: 10, wantErr: "unsupported type"},
		{name: "no extension", file: "README", size: 10, wantErr: "unsupported type"},
		{name: "empty file", file: "a.pdf", size: 0, wantErr: "is empty"},
		{name: "path in name", file: "../a.pdf", size: 10, wantErr: "invalid characters"},
		{name: "blank name", file: " ", size: 10, wantErr: "cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.file, tt.size, limit, allowed)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDocument_NoLimits(t *testing.T) {
	assert.NoError(t, ValidateDocument("anything.bin", 1<<40, 0, nil))
}

func TestValidateFieldName(t *testing.T) {
	assert.NoError(t, ValidateFieldName("jurisdiction"))
	assert.NoError(t, ValidateFieldName("doc.type_2"))
	assert.Error(t, ValidateFieldName(""))
	assert.Error(t, ValidateFieldName("a b"))
	assert.Error(t, ValidateFieldName(`x"y`))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello\tworld", SanitizeString("  hel\x00lo\tworld\x07 "))
}

func TestValidateSubmissionID(t *testing.T) {
	assert.NoError(t, ValidateSubmissionID("3f1c5d1e-8a7b-4c2d-9e0f-112233445566"))
	assert.Error(t, ValidateSubmissionID(""))
	assert.Error(t, ValidateSubmissionID("not-a-uuid"))
}

func TestValidatePageAndLimit(t *testing.T) {
	assert.Equal(t, 1, ValidatePage(""))
	assert.Equal(t, 1, ValidatePage("-2"))
	assert.Equal(t, 3, ValidatePage("3"))
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(500))
	assert.Equal(t, 50, ValidateLimit(50))
}
