// Package session assembles one upload page with its controller, renderer
// and drop zone bound to the page's elements.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/lexscan/internal/application"
	"github.com/bryanwahyu/lexscan/internal/application/upload"
	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
	"github.com/bryanwahyu/lexscan/internal/ui/dropzone"
	"github.com/bryanwahyu/lexscan/internal/ui/page"
	"github.com/bryanwahyu/lexscan/internal/ui/render"
)

// ErrOneDocument rejects drops of more than one document; the upload form
// has a single file control.
var ErrOneDocument = errors.New("only one document can be submitted at a time")

type Options struct {
	Title    string
	Uploader analysis.Uploader
	Recorder upload.Recorder // optional
	Clock    application.Clock
	Log      logrus.FieldLogger
	// Validate is run on every document before it reaches the file input.
	Validate func(analysis.Document) error
}

type Session struct {
	Page       *page.Page
	Controller *upload.Controller
	DropZone   *dropzone.Highlighter

	notifier *page.AlertNotifier
	validate func(analysis.Document) error
}

func New(o Options) (*Session, error) {
	if o.Uploader == nil {
		return nil, errors.New("session: uploader is required")
	}
	p, err := page.NewUploadPage(o.Title)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	notifier := page.NewAlertNotifier(p)
	renderer := render.New(render.Targets{
		Results:         p.Results(),
		RiskScore:       p.RiskScore(),
		Findings:        p.Findings(),
		Recommendations: p.Recommendations(),
	})

	return &Session{
		Page: p,
		Controller: &upload.Controller{
			Uploader: o.Uploader,
			Form:     p.Form(),
			Renderer: renderer,
			Notifier: notifier,
			Loading:  p.Loading(),
			Results:  p.Results(),
			Trigger:  p.Submit(),
			Recorder: o.Recorder,
			Clock:    o.Clock,
			Log:      o.Log,
		},
		DropZone: dropzone.New(p.DropZone(), p.FileInput()),
		notifier: notifier,
		validate: o.Validate,
	}, nil
}

// Drop validates docs and drops them on the page. A rejected document is
// shown as an alert and nothing is selected.
func (s *Session) Drop(docs ...analysis.Document) error {
	if len(docs) > 1 {
		s.notifier.Notify(ErrOneDocument.Error())
		return ErrOneDocument
	}
	if s.validate != nil {
		for _, d := range docs {
			if err := s.validate(d); err != nil {
				s.notifier.Notify(err.Error())
				return err
			}
		}
	}
	return s.DropZone.DropFiles(docs...)
}

// SetField fills a named form control, adding a hidden one when the form has none.
func (s *Session) SetField(name, value string) {
	if !s.Page.Form().SetValue(name, value) {
		s.Page.Form().AddHidden(name, value)
	}
}

// Submit fires one submit event.
func (s *Session) Submit(ctx context.Context) (*analysis.Result, error) {
	return s.Controller.Submit(ctx, upload.NewSubmitEvent())
}
