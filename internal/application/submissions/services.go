package submissions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/lexscan/internal/application"
	"github.com/bryanwahyu/lexscan/internal/application/upload"
	domain "github.com/bryanwahyu/lexscan/internal/domain/submissions"
)

const maxErrorLen = 512

// Service implements use-cases untuk riwayat submission.
// It is an upload.Recorder; Archive is optional.
type Service struct {
	Repo    domain.Repository
	Archive domain.ArchiveStore
	Clock   application.Clock
}

//
// ==== USE CASES ====
//

// Record simpan hasil satu submission, plus arsip JSON kalau sukses.
// The record is saved even when archiving fails; the archive error is returned.
func (s *Service) Record(ctx context.Context, o upload.Outcome) error {
	created := o.StartedAt
	if created.IsZero() {
		created = s.now()
	}
	rec := &domain.Record{
		ID:         domain.ID(uuid.New().String()),
		Filename:   strings.Join(o.Submission.Filenames(), ", "),
		Status:     domain.StatusFailed,
		DurationMS: o.Duration.Milliseconds(),
		CreatedAt:  created,
	}

	var archiveErr error
	if o.Succeeded() {
		res := o.Response.Analysis
		rec.Status = domain.StatusSuccess
		rec.RiskScore = res.RiskScore
		rec.RiskLevel = string(res.OverallRiskLevel)
		rec.FindingsCount = len(res.Findings)
		rec.DocumentType = res.DocumentType
		if o.Response.Filename != "" {
			rec.Filename = o.Response.Filename
		}
		if s.Archive != nil {
			rec.ArchiveURL, archiveErr = s.archive(ctx, rec, o)
		}
	} else if o.Err != nil {
		rec.Error = truncate(o.Err.Error(), maxErrorLen)
	}

	if err := s.Repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("save submission %s: %w", rec.ID, err)
	}
	return archiveErr
}

func (s *Service) archive(ctx context.Context, rec *domain.Record, o upload.Outcome) (string, error) {
	data, err := json.Marshal(o.Response)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	key := fmt.Sprintf("reports/%s/%s.json", rec.CreatedAt.UTC().Format("2006/01/02"), rec.ID)
	url, err := s.Archive.Put(ctx, key, data, "application/json")
	if err != nil {
		return "", fmt.Errorf("archive report %s: %w", rec.ID, err)
	}
	return url, nil
}

// List ambil satu halaman riwayat, terbaru dulu
func (s *Service) List(ctx context.Context, page, pageSize int) (*domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	data, err := s.Repo.Paginate(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(data, page, pageSize, total), nil
}

// Get ambil 1 submission by id
func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.Record, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
