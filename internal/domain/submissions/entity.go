package submissions

import (
	"errors"
	"time"
)

// ID tipe untuk Submission
type ID string

// Status enum
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

var ErrNotFound = errors.New("submission not found")

// Record is the audit entry kept for every submitted document.
type Record struct {
	ID            ID        `json:"id"`
	Filename      string    `json:"filename"`
	Status        Status    `json:"status"`
	RiskScore     float64   `json:"risk_score"`
	RiskLevel     string    `json:"risk_level,omitempty"`
	FindingsCount int       `json:"findings_count"`
	DocumentType  string    `json:"document_type,omitempty"`
	Error         string    `json:"error,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	ArchiveURL    string    `json:"archive_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
