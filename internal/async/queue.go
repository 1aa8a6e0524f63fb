package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/invoice"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has begun.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document to extract.
type Job struct {
	Path        string
	RunID       string
	SubmittedAt time.Time
}

// JobResult is handed to the result handler once per job, success or not.
type JobResult struct {
	Job      Job
	Outcome  invoice.Outcome
	Status   constants.RunStatus
	Err      error
	Duration time.Duration
}

// Processor turns a document path into an extraction outcome.
type Processor interface {
	Run(ctx context.Context, path string) (invoice.Outcome, error)
}

// ResultHandler runs on the worker goroutine that processed the job.
type ResultHandler func(ctx context.Context, r JobResult)

// Observer receives one call per finished job.
type Observer interface {
	ObserveJob(r JobResult)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// StatusOf classifies a processing error. Deadline overruns are abandoned, not retried.
func StatusOf(err error) constants.RunStatus {
	switch {
	case err == nil:
		return constants.RunStatusOK
	case errors.Is(err, context.DeadlineExceeded):
		return constants.RunStatusTimeout
	default:
		return constants.RunStatusFailed
	}
}
