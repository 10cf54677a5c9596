package htmlparse

import (
	"fmt"

	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

type ParseErrorCause string

const (
	ErrCauseMalformedHTML ParseErrorCause = "malformed html"
)

type ParseError struct {
	Message   string
	Retryable bool
	Cause     ParseErrorCause
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("htmlparse error: %s", e.Cause)
}

func (e *ParseError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ParseError) Kind() failure.Kind {
	return failure.KindInvalidInput
}

// mapParseErrorToMetadataCause maps htmlparse-local error semantics to the
// canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used to derive
// control-flow decisions.
func mapParseErrorToMetadataCause(err *ParseError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseMalformedHTML:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
