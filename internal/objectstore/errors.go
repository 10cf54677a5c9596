package objectstore

import (
	"fmt"

	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

type ObjectStoreErrorCause string

const (
	ErrCauseBucketUnavailable ObjectStoreErrorCause = "bucket unavailable"
	ErrCauseUploadFailed      ObjectStoreErrorCause = "upload failed"
	ErrCauseDownloadFailed    ObjectStoreErrorCause = "download failed"
	ErrCauseHashComputationFailed ObjectStoreErrorCause = "hash computation failed"
)

type ObjectStoreError struct {
	Message   string
	Retryable bool
	Cause     ObjectStoreErrorCause
	Bucket    string
	Key       string
}

func (e *ObjectStoreError) Error() string {
	return fmt.Sprintf("objectstore error: %s: %s", e.Cause, e.Message)
}

func (e *ObjectStoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ObjectStoreError) Kind() failure.Kind {
	return failure.KindStorage
}

// mapObjectStoreErrorToMetadataCause maps objectstore-local error semantics
// to the canonical metadata.ErrorCause table. Observational only.
func mapObjectStoreErrorToMetadataCause(err *ObjectStoreError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseBucketUnavailable, ErrCauseUploadFailed, ErrCauseDownloadFailed:
		return metadata.CauseStorageFailure
	case ErrCauseHashComputationFailed:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
