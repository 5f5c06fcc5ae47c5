// Package memory keeps submission history in process when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/bryanwahyu/lexscan/internal/domain/submissions"
)

type SubmissionRepository struct {
	mu      sync.RWMutex
	records map[domain.ID]domain.Record
	limit   int
}

// NewSubmissionRepository keeps at most limit records, dropping the oldest.
// limit <= 0 means unbounded.
func NewSubmissionRepository(limit int) *SubmissionRepository {
	return &SubmissionRepository{records: make(map[domain.ID]domain.Record), limit: limit}
}

func (r *SubmissionRepository) Save(_ context.Context, s *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[s.ID] = *s
	if r.limit > 0 && len(r.records) > r.limit {
		sorted := r.sortedLocked()
		for _, old := range sorted[r.limit:] {
			delete(r.records, old.ID)
		}
	}
	return nil
}

func (r *SubmissionRepository) Get(_ context.Context, id domain.ID) (*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *SubmissionRepository) Paginate(_ context.Context, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedLocked()
	start := (page - 1) * pageSize
	if start >= len(sorted) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], nil
}

func (r *SubmissionRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.records)), nil
}

// sortedLocked returns copies ordered by created_at desc, id desc.
func (r *SubmissionRepository) sortedLocked() []*domain.Record {
	out := make([]*domain.Record, 0, len(r.records))
	for _, s := range r.records {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
