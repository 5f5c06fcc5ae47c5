package uploadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
)

const (
	maxResponseBytes = 8 << 20
	maxErrorBody     = 512
)

// Client posts submissions to the analysis endpoint as multipart form data.
type Client struct {
	uploadURL string
	healthURL string
	http      *http.Client
	limiter   *rate.Limiter
	log       logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithRateLimit throttles uploads to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option { return func(c *Client) { c.log = l } }

// WithHealthURL sets the URL probed by Check.
func WithHealthURL(u string) Option { return func(c *Client) { c.healthURL = u } }

// New builds a client for uploadURL, e.g. http://localhost:8000/upload/.
func New(uploadURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		uploadURL: uploadURL,
		http:      &http.Client{Timeout: timeout},
		log:       logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Upload implements analysis.Uploader.
func (c *Client) Upload(ctx context.Context, sub analysis.Submission) (*analysis.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: limiter wait: %v", analysis.ErrTransport, err)
		}
	}

	body, contentType, err := encode(sub)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	size := body.Len()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrTransport, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"url":         c.uploadURL,
		"status":      resp.StatusCode,
		"bytes_sent":  size,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("upload finished")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &analysis.StatusError{Code: resp.StatusCode, Body: errorDetail(resp.Body)}
	}

	return analysis.Decode(io.LimitReader(resp.Body, maxResponseBytes))
}

// Check probes the health URL; it implements middleware.HealthChecker.
func (c *Client) Check(ctx context.Context) error {
	if c.healthURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", analysis.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &analysis.StatusError{Code: resp.StatusCode}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encode(sub analysis.Submission) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range sub.Fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}

	for _, a := range sub.Attachments {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(a.Field), quoteEscaper.Replace(a.Document.Name)))
		ct := a.Document.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if err := copyDocument(part, a.Document); err != nil {
			return nil, "", fmt.Errorf("read %s: %w", a.Document.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func copyDocument(w io.Writer, d analysis.Document) error {
	rc, err := d.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(w, rc)
	return err
}

// errorDetail extracts FastAPI-style {"detail": "..."} bodies, else a trimmed prefix.
func errorDetail(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var body struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil && body.Detail != nil {
		if s, ok := body.Detail.(string); ok {
			return s
		}
		b, _ := json.Marshal(body.Detail)
		return string(b)
	}
	return strings.TrimSpace(string(data))
}
