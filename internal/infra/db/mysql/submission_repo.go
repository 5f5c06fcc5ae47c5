package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/lexscan/internal/domain/submissions"
)

const schema = `
CREATE TABLE IF NOT EXISTS document_submissions (
  id             VARCHAR(36)  NOT NULL PRIMARY KEY,
  filename       VARCHAR(512) NOT NULL,
  status         VARCHAR(16)  NOT NULL,
  risk_score     DOUBLE       NOT NULL DEFAULT 0,
  risk_level     VARCHAR(32)  NOT NULL DEFAULT '-',
  findings_count INT          NOT NULL DEFAULT 0,
  document_type  VARCHAR(64)  NOT NULL DEFAULT '-',
  error_message  TEXT         NULL,
  duration_ms    BIGINT       NOT NULL DEFAULT 0,
  archive_url    VARCHAR(1024) NOT NULL DEFAULT '',
  created_at     DATETIME(3)  NOT NULL,
  INDEX idx_submissions_created (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Migrate bikin tabel kalau belum ada
func (r *SubmissionRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save insert/update submission record
func (r *SubmissionRepository) Save(ctx context.Context, s *domain.Record) error {
	const q = `
INSERT INTO document_submissions
  (id, filename, status, risk_score, risk_level, findings_count,
   document_type, error_message, duration_ms, archive_url, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  status=VALUES(status), risk_score=VALUES(risk_score), risk_level=VALUES(risk_level),
  findings_count=VALUES(findings_count), document_type=VALUES(document_type),
  error_message=VALUES(error_message), archive_url=VALUES(archive_url);
`
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		s.ID, stringOrDash(s.Filename), stringOrDash(string(s.Status)), s.RiskScore,
		stringOrDash(s.RiskLevel), s.FindingsCount, stringOrDash(s.DocumentType),
		nullString(s.Error), s.DurationMS, s.ArchiveURL, createdAt.UTC(),
	)
	return err
}

// Get by ID
func (r *SubmissionRepository) Get(ctx context.Context, id domain.ID) (*domain.Record, error) {
	const q = `
SELECT id, filename, status, risk_score, risk_level, findings_count,
       document_type, error_message, duration_ms, archive_url, created_at
FROM document_submissions
WHERE id=? LIMIT 1;
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
LIMIT ? OFFSET ?;
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
