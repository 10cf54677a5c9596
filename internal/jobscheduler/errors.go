package jobscheduler

import (
	"fmt"

	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

// SchedulerError reports a failure scoped to a single config's schedule
// evaluation; it never aborts the sweep over the other configs.
type SchedulerError struct {
	ConfigID string
	Message  string
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("jobscheduler: config %s: %s", e.ConfigID, e.Message)
}

func (e *SchedulerError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func (e *SchedulerError) Kind() failure.Kind {
	return failure.KindInvalidInput
}

func newInvalidScheduleError(configID, message string) *SchedulerError {
	return &SchedulerError{ConfigID: configID, Message: message}
}
