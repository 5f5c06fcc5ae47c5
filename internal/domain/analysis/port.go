package analysis

import "context"

// Uploader posts a submission to the analysis endpoint and returns the decoded result.
type Uploader interface {
	Upload(ctx context.Context, s Submission) (*Response, error)
}

// Notifier surfaces a user-visible message.
type Notifier interface {
	Notify(message string)
}
