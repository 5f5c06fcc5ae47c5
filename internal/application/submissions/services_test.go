package submissions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/lexscan/internal/application"
	"github.com/bryanwahyu/lexscan/internal/application/upload"
	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
	domain "github.com/bryanwahyu/lexscan/internal/domain/submissions"
	"github.com/bryanwahyu/lexscan/internal/infra/db/memory"
)

type fakeArchive struct {
	keys []string
	data [][]byte
	err  error
}

func (f *fakeArchive) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	f.data = append(f.data, data)
	return "s3://reports/" + key, nil
}

var started = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func submission(names ...string) analysis.Submission {
	var sub analysis.Submission
	for _, n := range names {
		sub.Attachments = append(sub.Attachments, analysis.Attachment{
			Field:    "file",
			Document: analysis.NewDocument(n, "application/pdf", nil),
		})
	}
	return sub
}

func successOutcome() upload.Outcome {
	return upload.Outcome{
		Submission: submission("lease.pdf"),
		Response: &analysis.Response{
			Filename: "lease.pdf",
			Status:   "success",
			Analysis: &analysis.Result{
				RiskScore:        7.5,
				OverallRiskLevel: analysis.RiskHigh,
				DocumentType:     "lease",
				Findings: []analysis.Finding{
					{Category: "termination", Keyword: "terminate", RiskLevel: analysis.RiskHigh},
					{Category: "liability", Keyword: "indemnify", RiskLevel: analysis.RiskMedium},
				},
			},
		},
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
	}
}

func newService(archive domain.ArchiveStore) (*Service, *memory.SubmissionRepository) {
	repo := memory.NewSubmissionRepository(0)
	return &Service{
		Repo:    repo,
		Archive: archive,
		Clock:   application.ClockFunc(func() time.Time { return started }),
	}, repo
}

func onlyRecord(t *testing.T, svc *Service) *domain.Record {
	t.Helper()
	page, err := svc.List(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	return page.Data[0]
}

func TestService_RecordSuccessArchivesReport(t *testing.T) {
	archive := &fakeArchive{}
	svc, _ := newService(archive)

	require.NoError(t, svc.Record(context.Background(), successOutcome()))

	rec := onlyRecord(t, svc)
	assert.Equal(t, domain.StatusSuccess, rec.Status)
	assert.Equal(t, "lease.pdf", rec.Filename)
	assert.Equal(t, 7.5, rec.RiskScore)
	assert.Equal(t, "HIGH", rec.RiskLevel)
	assert.Equal(t, 2, rec.FindingsCount)
	assert.Equal(t, "lease", rec.DocumentType)
	assert.Equal(t, int64(1500), rec.DurationMS)
	assert.Empty(t, rec.Error)

	require.Len(t, archive.keys, 1)
	assert.Equal(t, "reports/2024/05/01/"+string(rec.ID)+".json", archive.keys[0])
	assert.Contains(t, string(archive.data[0]), `"risk_score":7.5`)
	assert.Equal(t, "s3://reports/"+archive.keys[0], rec.ArchiveURL)
}

func TestService_RecordFailure(t *testing.T) {
	archive := &fakeArchive{}
	svc, _ := newService(archive)

	o := upload.Outcome{
		Submission: submission("a.pdf", "b.pdf"),
		Err:        &analysis.StatusError{Code: 500},
		StartedAt:  started,
	}
	require.NoError(t, svc.Record(context.Background(), o))

	rec := onlyRecord(t, svc)
	assert.Equal(t, domain.StatusFailed, rec.Status)
	assert.Equal(t, "a.pdf, b.pdf", rec.Filename)
	assert.Equal(t, "HTTP error! status: 500", rec.Error)
	assert.Empty(t, archive.keys)
}

func TestService_RecordKeepsRecordWhenArchiveFails(t *testing.T) {
	svc, _ := newService(&fakeArchive{err: errors.New("bucket gone")})

	err := svc.Record(context.Background(), successOutcome())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone")

	rec := onlyRecord(t, svc)
	assert.Equal(t, domain.StatusSuccess, rec.Status)
	assert.Empty(t, rec.ArchiveURL)
}

func TestService_RecordTruncatesLongErrors(t *testing.T) {
	svc, _ := newService(nil)
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}

	require.NoError(t, svc.Record(context.Background(), upload.Outcome{
		Submission: submission("a.pdf"),
		Err:        errors.New(string(long)),
	}))

	rec := onlyRecord(t, svc)
	assert.Len(t, rec.Error, maxErrorLen+3)
	assert.Equal(t, started, rec.CreatedAt)
}

func TestService_ListClampsPaging(t *testing.T) {
	svc, _ := newService(nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(context.Background(), successOutcome()))
	}

	page, err := svc.List(context.Background(), 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestService_GetMissing(t *testing.T) {
	svc, _ := newService(nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
