package queue

import (
	"fmt"

	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

type QueueErrorCause string

const (
	ErrCauseConnectionFailure    QueueErrorCause = "connection failure"
	ErrCauseSerializationFailure QueueErrorCause = "serialization failure"
	ErrCauseReservationExpired   QueueErrorCause = "reservation expired or unknown"
)

type QueueError struct {
	Message   string
	Retryable bool
	Cause     QueueErrorCause
}

func (e *QueueError) Error() string {
	return fmt.Sprintf("queue error: %s: %s", e.Cause, e.Message)
}

func (e *QueueError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *QueueError) Kind() failure.Kind {
	return failure.KindQueue
}

func newConnectionError(message string) *QueueError {
	return &QueueError{Message: message, Retryable: true, Cause: ErrCauseConnectionFailure}
}

func newSerializationError(message string) *QueueError {
	return &QueueError{Message: message, Retryable: false, Cause: ErrCauseSerializationFailure}
}

func newReservationExpiredError(id string) *QueueError {
	return &QueueError{Message: "no reservation found for id " + id, Retryable: false, Cause: ErrCauseReservationExpired}
}

func mapQueueErrorToMetadataCause(e *QueueError) metadata.ErrorCause {
	switch e.Cause {
	case ErrCauseConnectionFailure:
		return metadata.CauseNetworkFailure
	default:
		return metadata.CauseUnknown
	}
}
