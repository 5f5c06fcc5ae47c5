package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers network failures before a status was received.
	ErrTransport = errors.New("analysis transport failed")
	// ErrUpstreamStatus indicates a non-2xx reply from the analysis endpoint.
	ErrUpstreamStatus = errors.New("analysis endpoint returned an error status")
	// ErrMalformedResponse indicates a body that is not a valid analysis envelope.
	ErrMalformedResponse = errors.New("malformed analysis response")
	// ErrNoDocument is returned when the form is submitted without a selected file.
	ErrNoDocument = errors.New("no document selected")
	// ErrSubmissionInFlight is returned for a submit that overlaps a running one.
	ErrSubmissionInFlight = errors.New("submission already in progress")
)

// StatusError carries the HTTP status of a failed upload.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.Code)
	}
	return fmt.Sprintf("HTTP error! status: %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUpstreamStatus }

// ValidationError names the response field that failed the schema check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrMalformedResponse }
