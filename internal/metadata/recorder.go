package metadata

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Content hashes
- Crawl depth

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Hashes
- Status codes
- Durations
- Identifiers (page ID, crawl ID)
*/

// StructuredRecorder is the MetadataSink/CrawlFinalizer backing used across
// the crawl service. Every call goes through zerolog as a structured event;
// nothing it does can fail, so it never returns an error.
type StructuredRecorder struct {
	name   string
	logger zerolog.Logger
}

// NewRecorder builds a StructuredRecorder tagged with a component name, for
// example a worker ID or "scheduler".
func NewRecorder(name string) *StructuredRecorder {
	return &StructuredRecorder{
		name:   name,
		logger: log.With().Str("component", name).Logger(),
	}
}

func (r *StructuredRecorder) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount int, crawlDepth int) {
	r.logger.Info().
		Str("url", fetchUrl).
		Int("http_status", httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Int("retry_count", retryCount).
		Int("crawl_depth", crawlDepth).
		Msg("fetch")
}

func (r *StructuredRecorder) RecordAssetFetch(fetchUrl string, httpStatus int, duration time.Duration, retryCount int) {
	r.logger.Info().
		Str("asset_url", fetchUrl).
		Int("http_status", httpStatus).
		Dur("duration", duration).
		Int("retry_count", retryCount).
		Msg("asset_fetch")
}

func (r *StructuredRecorder) RecordError(observedAt time.Time, packageName, action string, cause ErrorCause, details string, attrs []Attribute) {
	evt := r.logger.Warn().
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Str("cause", causeString(cause)).
		Str("details", details)

	for _, attr := range attrs {
		evt = evt.Str(string(attr.Key), attr.Value)
	}
	evt.Msg("error")
}

func (r *StructuredRecorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	evt := r.logger.Debug().
		Str("artifact_kind", artifactKindString(kind)).
		Str("path", path)

	for _, attr := range attrs {
		evt = evt.Str(string(attr.Key), attr.Value)
	}
	evt.Msg("artifact")
}

func (r *StructuredRecorder) RecordFinalCrawlStats(totalPages, totalErrors, totalAssets int, duration time.Duration) {
	r.logger.Info().
		Int("total_pages", totalPages).
		Int("total_errors", totalErrors).
		Int("total_assets", totalAssets).
		Dur("duration", duration).
		Msg("crawl_complete")
}

func causeString(c ErrorCause) string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	case CauseRetryFailure:
		return "retry_failure"
	default:
		return "unknown"
	}
}

func artifactKindString(k ArtifactKind) string {
	switch k {
	case ArtifactHTML:
		return "html"
	case ArtifactMarkdown:
		return "markdown"
	case ArtifactAsset:
		return "asset"
	default:
		return "unknown"
	}
}
