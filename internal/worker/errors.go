package worker

import (
	"fmt"

	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

type WorkerErrorCause string

const (
	ErrCauseInvalidBaseURL WorkerErrorCause = "invalid base url"
	ErrCauseInvalidPayload WorkerErrorCause = "invalid queue payload"
)

// WorkerError reports a job-level failure: something that keeps the whole
// job from making progress, as opposed to a single URL failing to crawl
// (which is recorded on the Page itself, never raised as a WorkerError).
type WorkerError struct {
	Message string
	Cause   WorkerErrorCause
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker error: %s: %s", e.Cause, e.Message)
}

func (e *WorkerError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *WorkerError) Kind() failure.Kind {
	return failure.KindScraper
}

func newInvalidBaseURLError(message string) *WorkerError {
	return &WorkerError{Message: message, Cause: ErrCauseInvalidBaseURL}
}

func newInvalidPayloadError(message string) *WorkerError {
	return &WorkerError{Message: message, Cause: ErrCauseInvalidPayload}
}
