package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	domain "github.com/bryanwahyu/lexscan/internal/domain/submissions"
)

const schema = `
CREATE TABLE IF NOT EXISTS document_submissions (
  id             VARCHAR(36)  PRIMARY KEY,
  filename       TEXT         NOT NULL,
  status         VARCHAR(16)  NOT NULL,
  risk_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
  risk_level     VARCHAR(32)  NOT NULL DEFAULT '-',
  findings_count INTEGER      NOT NULL DEFAULT 0,
  document_type  VARCHAR(64)  NOT NULL DEFAULT '-',
  error_message  TEXT         NULL,
  duration_ms    BIGINT       NOT NULL DEFAULT 0,
  archive_url    TEXT         NOT NULL DEFAULT '',
  created_at     TIMESTAMPTZ  NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_created ON document_submissions (created_at);
`

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save inserts or updates a submission record
func (r *SubmissionRepository) Save(ctx context.Context, s *domain.Record) error {
	const q = `
INSERT INTO document_submissions
  (id, filename, status, risk_score, risk_level, findings_count,
   document_type, error_message, duration_ms, archive_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  status=EXCLUDED.status,
  risk_score=EXCLUDED.risk_score,
  risk_level=EXCLUDED.risk_level,
  findings_count=EXCLUDED.findings_count,
  document_type=EXCLUDED.document_type,
  error_message=EXCLUDED.error_message,
  archive_url=EXCLUDED.archive_url;
`
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	errMsg := sql.NullString{String: s.Error, Valid: s.Error != ""}
	_, err := r.db.ExecContext(ctx, q,
		s.ID, stringOrDash(s.Filename), stringOrDash(string(s.Status)), s.RiskScore,
		stringOrDash(s.RiskLevel), s.FindingsCount, stringOrDash(s.DocumentType),
		errMsg, s.DurationMS, s.ArchiveURL, createdAt,
	)
	return err
}

func (r *SubmissionRepository) Get(ctx context.Context, id domain.ID) (*domain.Record, error) {
	const q = `
SELECT id, filename, status, risk_score, risk_level, findings_count,
       document_type, error_message, duration_ms, archive_url, created_at
FROM document_submissions
WHERE id=$1 LIMIT 1;
`
	s, err := scanRecord(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return s, err
}

// Paginate returns a page of submissions ordered by created_at desc
func (r *SubmissionRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, filename, status, risk_score, risk_level, findings_count,
       document_type, error_message, duration_ms, archive_url, created_at
FROM document_submissions
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		s, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SubmissionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_submissions`).Scan(&n)
	return n, err
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

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func dashToEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
