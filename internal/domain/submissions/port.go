package submissions

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, id ID) (*Record, error)
	Paginate(ctx context.Context, page, pageSize int) ([]*Record, error)
	Count(ctx context.Context) (int64, error)
}

// ArchiveStore port (interface untuk penyimpanan laporan)
type ArchiveStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
