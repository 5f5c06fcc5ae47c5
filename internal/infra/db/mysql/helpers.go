package mysql

import (
	"database/sql"
	"strings"

	domain "github.com/bryanwahyu/lexscan/internal/domain/submissions"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// dashToEmpty reverses stringOrDash on read
func dashToEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var (
		s      domain.Record
		errMsg sql.NullString
	)
	if err := row.Scan(
		&s.ID, &s.Filename, &s.Status, &s.RiskScore, &s.RiskLevel, &s.FindingsCount,
		&s.DocumentType, &errMsg, &s.DurationMS, &s.ArchiveURL, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	s.Filename = dashToEmpty(s.Filename)
	s.RiskLevel = dashToEmpty(s.RiskLevel)
	s.DocumentType = dashToEmpty(s.DocumentType)
	s.Error = errMsg.String
	return &s, nil
}
