package crawler

import (
	"fmt"

	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

type CrawlErrorCause string

const (
	ErrCauseFilteredByPatterns CrawlErrorCause = "patterns"
	ErrCauseDisallowedByRobots CrawlErrorCause = "robots"
	ErrCauseInfraFailure       CrawlErrorCause = "infra_failure"
)

// CrawlError is returned for admission-time rejections: a URL that never
// reaches the HTTP fetcher because it fails the URL filter or robots.txt.
// An HTTP-level failure (4xx/5xx, oversized body) is not a CrawlError; it is
// recorded on the returned Page's ErrorMessage instead.
type CrawlError struct {
	Message string
	Cause   CrawlErrorCause
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl rejected: %s", e.Cause)
}

func (e *CrawlError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *CrawlError) Kind() failure.Kind {
	if e.Cause == ErrCauseInfraFailure {
		return failure.KindExternalService
	}
	return failure.KindInvalidInput
}

func newFilterError() *CrawlError {
	return &CrawlError{Message: "url rejected by include/exclude patterns", Cause: ErrCauseFilteredByPatterns}
}

func newRobotsError() *CrawlError {
	return &CrawlError{Message: "url disallowed by robots.txt", Cause: ErrCauseDisallowedByRobots}
}

func newInfraError(cause error) *CrawlError {
	return &CrawlError{Message: cause.Error(), Cause: ErrCauseInfraFailure}
}
