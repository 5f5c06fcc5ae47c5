package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/lexscan/internal/application"
	appsubs "github.com/bryanwahyu/lexscan/internal/application/submissions"
	"github.com/bryanwahyu/lexscan/internal/application/upload"
	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
	domain "github.com/bryanwahyu/lexscan/internal/domain/submissions"
	"github.com/bryanwahyu/lexscan/internal/middleware"
	"github.com/bryanwahyu/lexscan/internal/ui/page"
	"github.com/bryanwahyu/lexscan/internal/ui/session"
)

// Options configures the console router.
type Options struct {
	App               middleware.AppInfo
	MaxFileSize       int64
	AllowedExtensions []string
	RateLimit         float64
	Burst             int
	AllowedOrigins    []string

	Uploader analysis.Uploader
	History  *appsubs.Service // optional; /v1 routes are not mounted without it

	// Checkers feed /health; Required feed /readyz.
	Checkers map[string]middleware.HealthChecker
	Required map[string]middleware.HealthChecker

	Clock application.Clock
	Log   logrus.FieldLogger
	// Done stops background cleanup when closed.
	Done <-chan struct{}
}

type Router struct {
	opts Options
	log  logrus.FieldLogger
}

func NewRouter(opts Options) http.Handler {
	if opts.Clock == nil {
		opts.Clock = application.SystemClock{}
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	r := &Router{opts: opts, log: opts.Log}
	mux := chi.NewRouter()

	mux.Use(middleware.Logging(opts.Log))
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(opts.App, opts.Checkers))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler(opts.Required))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Get("/", r.wrap(r.handlePage))
	if opts.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(opts.RateLimit, opts.Burst)
		go limiter.Run(5*time.Minute, opts.Done)
		mux.With(limiter.Handler).Post("/", r.wrap(r.handleSubmit))
	} else {
		mux.Post("/", r.wrap(r.handleSubmit))
	}

	if opts.History != nil {
		mux.Route("/v1", func(rt chi.Router) {
			rt.Use(cors.Handler(cors.Options{
				AllowedOrigins: opts.AllowedOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
			rt.Get("/submissions", r.wrap(r.handleList))
			rt.Get("/submissions/{id}", r.wrap(r.handleGet))
		})
	}

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, sql.ErrNoRows), errors.Is(err, domain.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, middleware.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.As(err, &tooLarge):
			http.Error(w, fmt.Sprintf("request body exceeds %s", humanize.IBytes(uint64(tooLarge.Limit))), http.StatusRequestEntityTooLarge)
		default:
			r.log.WithError(err).WithField("path", req.URL.Path).Error("handler failed")
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// GET /
func (r *Router) handlePage(w http.ResponseWriter, req *http.Request) error {
	p, err := page.NewUploadPage(r.opts.App.Name)
	if err != nil {
		return err
	}
	return writePage(w, http.StatusOK, p)
}

// POST / (multipart, the form's native submission)
// The document goes through the same controller as the scripted page and the
// resulting page is rendered back.
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.bodyLimit())
	if err := req.ParseMultipartForm(r.bodyLimit()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", middleware.ErrInvalidInput, err)
	}
	defer req.MultipartForm.RemoveAll()

	s, err := session.New(session.Options{
		Title:    r.opts.App.Name,
		Uploader: meteredUploader{next: r.opts.Uploader},
		Recorder: r.recorder(),
		Clock:    r.opts.Clock,
		Log:      r.log,
		Validate: func(d analysis.Document) error {
			return middleware.ValidateDocument(d.Name, d.Size, r.opts.MaxFileSize, r.opts.AllowedExtensions)
		},
	})
	if err != nil {
		return err
	}

	names := make([]string, 0, len(req.MultipartForm.Value))
	for name := range req.MultipartForm.Value {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := middleware.ValidateFieldName(name); err != nil {
			return err
		}
		values := req.MultipartForm.Value[name]
		s.SetField(name, middleware.SanitizeString(values[len(values)-1]))
	}

	docs, err := readDocuments(req, s.Page.FileInput().Name())
	if err != nil {
		return err
	}
	if len(docs) > 0 {
		if err := s.Drop(docs...); err != nil {
			middleware.IncrementSubmissionsRejected()
			return writePage(w, http.StatusBadRequest, s.Page)
		}
	}

	middleware.IncrementSubmissions()
	status := http.StatusOK
	if _, err := s.Submit(req.Context()); err != nil {
		middleware.IncrementSubmissionsFailed()
		status = submitStatus(err)
	}
	return writePage(w, status, s.Page)
}

func (r *Router) bodyLimit() int64 {
	// room for the other form fields and multipart framing
	return r.opts.MaxFileSize + 1<<20
}

func (r *Router) recorder() upload.Recorder {
	if r.opts.History == nil {
		return nil
	}
	return r.opts.History
}

func readDocuments(req *http.Request, field string) ([]analysis.Document, error) {
	var docs []analysis.Document
	for _, fh := range req.MultipartForm.File[field] {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		ct := fh.Header.Get("Content-Type")
		if ct == "" || ct == "application/octet-stream" {
			ct = analysis.ContentTypeFor(fh.Filename)
		}
		docs = append(docs, analysis.NewDocument(fh.Filename, ct, data))
	}
	return docs, nil
}

func submitStatus(err error) int {
	switch {
	case errors.Is(err, analysis.ErrNoDocument):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrTransport),
		errors.Is(err, analysis.ErrUpstreamStatus),
		errors.Is(err, analysis.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writePage(w http.ResponseWriter, status int, p *page.Page) error {
	out, err := p.HTML()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = io.WriteString(w, out)
	return err
}

type submissionView struct {
	*domain.Record
	CreatedAgo string `json:"created_ago"`
}

func (r *Router) view(rec *domain.Record) submissionView {
	return submissionView{
		Record:     rec,
		CreatedAgo: humanize.RelTime(rec.CreatedAt, r.opts.Clock.Now(), "ago", "from now"),
	}
}

// GET /v1/submissions?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	pageNum := middleware.ValidatePage(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))

	list, err := r.opts.History.List(req.Context(), pageNum, middleware.ValidateLimit(size))
	if err != nil {
		return err
	}

	views := make([]submissionView, 0, len(list.Data))
	for _, rec := range list.Data {
		views = append(views, r.view(rec))
	}
	return writeJSON(w, map[string]interface{}{
		"data":       views,
		"page":       list.Page,
		"pageSize":   list.PageSize,
		"totalItems": list.Total,
		"totalPages": list.TotalPages,
	})
}

// GET /v1/submissions/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateSubmissionID(id); err != nil {
		return err
	}
	rec, err := r.opts.History.Get(req.Context(), domain.ID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, r.view(rec))
}

func writeJSON(w http.ResponseWriter, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// meteredUploader counts documents in flight to the analysis service.
type meteredUploader struct {
	next analysis.Uploader
}

func (m meteredUploader) Upload(ctx context.Context, sub analysis.Submission) (*analysis.Response, error) {
	middleware.IncrementSubmissionsRunning()
	defer middleware.DecrementSubmissionsRunning()
	return m.next.Upload(ctx, sub)
}
