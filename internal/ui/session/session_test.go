package session

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/lexscan/internal/application/upload"
	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
)

type stubUploader struct {
	resp *analysis.Response
	err  error
	got  analysis.Submission
}

func (s *stubUploader) Upload(_ context.Context, sub analysis.Submission) (*analysis.Response, error) {
	s.got = sub
	return s.resp, s.err
}

func newSession(t *testing.T, up *stubUploader, validate func(analysis.Document) error) *Session {
	t.Helper()
	log, _ := test.NewNullLogger()
	s, err := New(Options{Title: "Irish Law Analyzer", Uploader: up, Log: log, Validate: validate})
	require.NoError(t, err)
	return s
}

func TestSession_DropAndSubmitRendersResult(t *testing.T) {
	up := &stubUploader{resp: &analysis.Response{Analysis: &analysis.Result{
		RiskScore:        4,
		OverallRiskLevel: analysis.RiskMedium,
		Findings: []analysis.Finding{
			{Category: "liability", Keyword: "indemnify", Context: "shall <b>indemnify</b>", Occurrences: 2, RiskLevel: analysis.RiskMedium},
		},
		Recommendations: []string{"Review the indemnity clause"},
	}}}
	s := newSession(t, up, nil)

	require.NoError(t, s.Drop(analysis.NewDocument("lease.pdf", "application/pdf", []byte("%PDF"))))
	assert.False(t, s.Page.DropZone().HasClass("highlight"))

	res, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.RiskScore)

	assert.Equal(t, []string{"lease.pdf"}, up.got.Filenames())
	assert.True(t, s.Page.Results().Visible())
	assert.False(t, s.Page.Loading().Visible())
	assert.False(t, s.Page.Submit().Disabled())
	assert.Contains(t, s.Page.RiskScore().Text(), "Risk Score: 4")
	assert.Equal(t, 1, s.Page.Findings().Find("li.finding-item.medium"))
	assert.Contains(t, s.Page.Findings().HTML(), "&lt;b&gt;indemnify&lt;/b&gt;")
	assert.Equal(t, 1, s.Page.Recommendations().Find("li.recommendation-item"))
}

func TestSession_SubmitFailureShowsAlert(t *testing.T) {
	up := &stubUploader{err: &analysis.StatusError{Code: 500}}
	s := newSession(t, up, nil)
	require.NoError(t, s.Drop(analysis.NewDocument("lease.pdf", "application/pdf", []byte("x"))))

	_, err := s.Submit(context.Background())
	assert.True(t, errors.Is(err, analysis.ErrUpstreamStatus))

	assert.Equal(t, upload.FailureMessage, s.Page.Element(".alert").Text())
	assert.False(t, s.Page.Results().Visible())
	assert.False(t, s.Page.Loading().Visible())
}

func TestSession_DropRejectedDocument(t *testing.T) {
	rejected := errors.New("notes.docx has an unsupported type")
	s := newSession(t, &stubUploader{}, func(d analysis.Document) error {
		if d.Name == "notes.docx" {
			return rejected
		}
		return nil
	})

	err := s.Drop(analysis.NewDocument("notes.docx", "", []byte("x")))
	assert.ErrorIs(t, err, rejected)
	assert.Empty(t, s.Page.FileInput().Files())
	assert.Contains(t, s.Page.Element(".alert").Text(), "unsupported type")
}

func TestSession_DropRejectsSeveralDocuments(t *testing.T) {
	up := &stubUploader{}
	s := newSession(t, up, nil)

	err := s.Drop(
		analysis.NewDocument("a.pdf", "application/pdf", []byte("x")),
		analysis.NewDocument("b.pdf", "application/pdf", []byte("y")),
	)
	assert.ErrorIs(t, err, ErrOneDocument)
	assert.Empty(t, s.Page.FileInput().Files())
	assert.Equal(t, ErrOneDocument.Error(), s.Page.Element(".alert").Text())

	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, analysis.ErrNoDocument)
	assert.Empty(t, up.got.Attachments)
}

func TestSession_SetFieldIsSent(t *testing.T) {
	up := &stubUploader{resp: &analysis.Response{Analysis: &analysis.Result{}}}
	s := newSession(t, up, nil)

	s.SetField("jurisdiction", "IE")
	s.SetField("jurisdiction", "NI")
	require.NoError(t, s.Drop(analysis.NewDocument("a.pdf", "application/pdf", []byte("x"))))

	_, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []analysis.Field{{Name: "jurisdiction", Value: "NI"}}, up.got.Fields)
}

func TestNew_RequiresUploader(t *testing.T) {
	_, err := New(Options{Title: "x"})
	assert.Error(t, err)
}
