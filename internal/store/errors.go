package store

import (
	"fmt"

	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCauseConnectionFailure StoreErrorCause = "connection failure"
	ErrCauseNotFound          StoreErrorCause = "not found"
	ErrCauseConstraintViolation StoreErrorCause = "constraint violation"
)

type StoreError struct {
	Message string
	Cause   StoreErrorCause
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %s", e.Cause, e.Message)
}

func (e *StoreError) Severity() failure.Severity {
	if e.Cause == ErrCauseNotFound {
		return failure.SeverityFatal
	}
	return failure.SeverityRecoverable
}

func (e *StoreError) Kind() failure.Kind {
	if e.Cause == ErrCauseNotFound {
		return failure.KindNotFound
	}
	return failure.KindDatabase
}

func newNotFoundError(entity, id string) *StoreError {
	return &StoreError{Message: fmt.Sprintf("%s %s not found", entity, id), Cause: ErrCauseNotFound}
}

func newConnectionError(message string) *StoreError {
	return &StoreError{Message: message, Cause: ErrCauseConnectionFailure}
}
