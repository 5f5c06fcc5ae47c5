// Package upload wires the upload form's submit event to the analysis endpoint.
package upload

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/lexscan/internal/application"
	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
)

// FailureMessage is the single notification shown for every failed submission.
const FailureMessage = "An error occurred while processing the document."

// SubmitEvent is one form submission.
type SubmitEvent struct {
	defaultPrevented bool
}

func NewSubmitEvent() *SubmitEvent { return &SubmitEvent{} }

func (e *SubmitEvent) PreventDefault()        { e.defaultPrevented = true }
func (e *SubmitEvent) DefaultPrevented() bool { return e.defaultPrevented }

// FormSource collects the form into a submission.
type FormSource interface {
	Collect() (analysis.Submission, error)
}

// ResultRenderer draws a successful result.
type ResultRenderer interface {
	Render(res *analysis.Result) error
}

// Toggle is an element that can be shown and hidden.
type Toggle interface {
	Show()
	Hide()
}

// Trigger is the submit control, disabled while a submission runs.
type Trigger interface {
	Disable()
	Enable()
}

// Outcome describes one finished submission.
type Outcome struct {
	Submission analysis.Submission
	Response   *analysis.Response
	Err        error
	StartedAt  time.Time
	Duration   time.Duration
}

func (o Outcome) Succeeded() bool { return o.Err == nil && o.Response != nil }

// Recorder receives every outcome. Its errors are logged, never shown.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// Controller handles submits for one upload form.
// At most one submission runs at a time; overlapping submits are rejected
// with analysis.ErrSubmissionInFlight while the trigger is disabled.
type Controller struct {
	Uploader analysis.Uploader
	Form     FormSource
	Renderer ResultRenderer
	Notifier analysis.Notifier
	Loading  Toggle
	Results  Toggle
	Trigger  Trigger  // optional
	Recorder Recorder // optional
	Clock    application.Clock
	Log      logrus.FieldLogger

	inFlight atomic.Bool
}

// InFlight reports whether a submission is running.
func (c *Controller) InFlight() bool { return c.inFlight.Load() }

// Submit handles one submit event end to end. The loading indicator is
// hidden on return whatever the outcome.
func (c *Controller) Submit(ctx context.Context, e *SubmitEvent) (*analysis.Result, error) {
	e.PreventDefault()

	if !c.inFlight.CompareAndSwap(false, true) {
		c.logger().Warn("submit ignored: a submission is already in flight")
		return nil, analysis.ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	if c.Trigger != nil {
		c.Trigger.Disable()
		defer c.Trigger.Enable()
	}

	started := c.now()
	c.Results.Hide()
	sub, err := c.Form.Collect()
	if err != nil {
		return nil, c.fail(ctx, Outcome{Submission: sub, Err: err, StartedAt: started})
	}

	c.Loading.Show()
	defer c.Loading.Hide()

	resp, err := c.Uploader.Upload(ctx, sub)
	if err == nil && (resp == nil || resp.Analysis == nil) {
		err = &analysis.ValidationError{Field: "analysis", Reason: "missing"}
	}
	if err != nil {
		return nil, c.fail(ctx, Outcome{Submission: sub, Err: err, StartedAt: started})
	}

	if err := c.Renderer.Render(resp.Analysis); err != nil {
		c.Results.Hide()
		return nil, c.fail(ctx, Outcome{Submission: sub, Response: resp, Err: err, StartedAt: started})
	}

	o := Outcome{Submission: sub, Response: resp, StartedAt: started, Duration: c.now().Sub(started)}
	c.logger().WithFields(logrus.Fields{
		"files":       sub.Filenames(),
		"risk_score":  resp.Analysis.Score(),
		"risk_level":  resp.Analysis.OverallRiskLevel,
		"findings":    len(resp.Analysis.Findings),
		"duration_ms": o.Duration.Milliseconds(),
	}).Info("document analyzed")
	c.record(ctx, o)

	return resp.Analysis, nil
}

func (c *Controller) fail(ctx context.Context, o Outcome) error {
	o.Duration = c.now().Sub(o.StartedAt)
	c.logger().WithError(o.Err).WithField("files", o.Submission.Filenames()).Error("document submission failed")
	c.Notifier.Notify(FailureMessage)
	c.record(ctx, o)
	return fmt.Errorf("submit: %w", o.Err)
}

func (c *Controller) record(ctx context.Context, o Outcome) {
	if c.Recorder == nil {
		return
	}
	if err := c.Recorder.Record(ctx, o); err != nil {
		c.logger().WithError(err).Warn("failed to record submission")
	}
}

func (c *Controller) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock.Now()
}

func (c *Controller) logger() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}
