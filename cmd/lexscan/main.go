// Command lexscan submits documents to the legal-risk analyzer and prints
// or saves the rendered result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/lexscan/internal/application"
	"github.com/bryanwahyu/lexscan/internal/application/upload"
	"github.com/bryanwahyu/lexscan/internal/config"
	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
	"github.com/bryanwahyu/lexscan/internal/infra/uploadclient"
	"github.com/bryanwahyu/lexscan/internal/logger"
	"github.com/bryanwahyu/lexscan/internal/middleware"
	"github.com/bryanwahyu/lexscan/internal/ui/render"
	"github.com/bryanwahyu/lexscan/internal/ui/session"
)

const (
	exitOK = iota
	exitFailed
	exitUsage
)

type fieldFlags []analysis.Field

func (f *fieldFlags) String() string {
	parts := make([]string, 0, len(*f))
	for _, fl := range *f {
		parts = append(parts, fl.Name+"="+fl.Value)
	}
	return strings.Join(parts, ",")
}

func (f *fieldFlags) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("expected name=value, got %q", v)
	}
	if err := middleware.ValidateFieldName(name); err != nil {
		return err
	}
	*f = append(*f, analysis.Field{Name: name, Value: value})
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lexscan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", envOr("CONFIG_PATH", "config.yaml"), "Path to config.yaml")
	server := fs.String("server", "", "Override analyzer base URL (e.g. http://localhost:8000)")
	out := fs.String("out", "", "Write the rendered results page to this HTML file")
	var fields fieldFlags
	fs.Var(&fields, "field", "Extra form field name=value (repeatable)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: lexscan [-config path] [-server url] [-out file.html] [-field name=value]... FILE")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	switch fs.NArg() {
	case 0:
		fs.Usage()
		return exitUsage
	case 1:
	default:
		fmt.Fprintln(stderr, "Error: exactly one FILE per run, got", fs.NArg())
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFailed
	}
	if *server != "" {
		cfg.Upstream.BaseURL = *server
	}

	log, err := logger.InitLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFailed
	}

	doc, err := analysis.DocumentFromPath(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFailed
	}

	client := uploadclient.New(cfg.UploadURL(), cfg.Upstream.Timeout,
		uploadclient.WithRateLimit(cfg.Upstream.RPS, cfg.Upstream.Burst),
		uploadclient.WithLogger(log.WithField("component", "uploadclient")),
	)
	s, err := session.New(session.Options{
		Title:    cfg.App.Name,
		Uploader: client,
		Clock:    application.SystemClock{},
		Log:      log,
		Validate: func(d analysis.Document) error {
			return middleware.ValidateDocument(d.Name, d.Size, cfg.Upload.MaxFileSize, cfg.Upload.AllowedExtensions)
		},
	})
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFailed
	}

	for _, f := range fields {
		s.SetField(f.Name, f.Value)
	}
	if err := s.Drop(doc); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFailed
	}

	log.WithFields(logrus.Fields{"file": doc.Name, "size": humanize.IBytes(uint64(doc.Size))}).Info("submitting document")

	res, submitErr := s.Submit(ctx)
	if *out != "" {
		if err := writeFile(*out, s); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return exitFailed
		}
	}
	if submitErr != nil {
		fmt.Fprintln(stderr, "Error:", describe(submitErr))
		return exitFailed
	}

	if err := render.Summary(stdout, res); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFailed
	}
	return exitOK
}

// describe keeps the generic message and adds the cause for terminal users.
func describe(err error) string {
	if errors.Is(err, analysis.ErrTransport) ||
		errors.Is(err, analysis.ErrUpstreamStatus) ||
		errors.Is(err, analysis.ErrMalformedResponse) {
		return fmt.Sprintf("%s (%v)", upload.FailureMessage, err)
	}
	return err.Error()
}

func writeFile(path string, s *session.Session) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := s.Page.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
