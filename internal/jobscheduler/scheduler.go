package jobscheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rohmanhakim/crawlservice/internal/domain"
	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/internal/queue"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

/*
Responsibilities

- Sweep every active, schedule-carrying config on a fixed interval
- For each, decide whether a cron-eligible run is due since its last job
  (or since the config was created, if it has never run) and mint one if so
- Never run the crawl itself: minting a Job and enqueueing it is the whole
  job of this package, matching the worker/scheduler split spec.md draws
*/

// ConfigRepository is the slice of store.ConfigStore the scheduler depends on.
type ConfigRepository interface {
	ListSchedulable(ctx context.Context) ([]domain.ScraperConfig, failure.ClassifiedError)
}

// JobRepository is the slice of store.JobStore the scheduler depends on.
type JobRepository interface {
	GetLastForConfig(ctx context.Context, configID string) (domain.Job, bool, failure.ClassifiedError)
	CreateJob(ctx context.Context, configID string) (domain.Job, failure.ClassifiedError)
}

const defaultCheckInterval = 30 * time.Second

// cronParser accepts the standard five-field expressions the teacher's configs
// carry (minute hour day-of-month month day-of-week), with no seconds field.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

type Scheduler struct {
	configs       ConfigRepository
	jobs          JobRepository
	jobQueue      queue.JobQueue
	queueName     string
	metadataSink  metadata.MetadataSink
	checkInterval time.Duration
}

func NewScheduler(
	configs ConfigRepository,
	jobs JobRepository,
	jobQueue queue.JobQueue,
	queueName string,
	metadataSink metadata.MetadataSink,
	checkInterval time.Duration,
) Scheduler {
	if checkInterval <= 0 {
		checkInterval = defaultCheckInterval
	}
	return Scheduler{
		configs:       configs,
		jobs:          jobs,
		jobQueue:      jobQueue,
		queueName:     queueName,
		metadataSink:  metadataSink,
		checkInterval: checkInterval,
	}
}

// Run sweeps schedules immediately, then again every checkInterval, until ctx
// is cancelled. It is meant to run as its own goroutine for the lifetime of
// the scheduler process.
func (s *Scheduler) Run(ctx context.Context) {
	s.checkSchedules(ctx)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkSchedules(ctx)
		}
	}
}

// checkSchedules evaluates every active, schedule-carrying config once and
// mints a job for each one whose cron schedule has a firing time between its
// reference time and now. A config with an unparseable schedule is skipped
// and recorded, never fatal to the sweep as a whole.
func (s *Scheduler) checkSchedules(ctx context.Context) {
	configs, err := s.configs.ListSchedulable(ctx)
	if err != nil {
		s.recordError("checkSchedules.list", "", err)
		return
	}

	now := time.Now().UTC()

	for _, cfg := range configs {
		if cfg.Schedule == nil || *cfg.Schedule == "" {
			continue
		}

		schedule, parseErr := cronParser.Parse(*cfg.Schedule)
		if parseErr != nil {
			s.recordError("checkSchedules.parse", cfg.ID, newInvalidScheduleError(cfg.ID, parseErr.Error()))
			continue
		}

		referenceTime, refErr := s.referenceTime(ctx, cfg)
		if refErr != nil {
			s.recordError("checkSchedules.referenceTime", cfg.ID, refErr)
			continue
		}

		nextRun := schedule.Next(referenceTime)
		if nextRun.After(now) {
			continue
		}

		if err := s.mintJob(ctx, cfg.ID); err != nil {
			s.recordError("checkSchedules.mintJob", cfg.ID, err)
		}
	}
}

// referenceTime is the point a config's cron schedule advances from: its
// last job's completion time, or that job's creation time if it has not
// completed, or the config's own creation time if it has never run.
func (s *Scheduler) referenceTime(ctx context.Context, cfg domain.ScraperConfig) (time.Time, failure.ClassifiedError) {
	lastJob, ok, err := s.jobs.GetLastForConfig(ctx, cfg.ID)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return cfg.CreatedAt, nil
	}
	if lastJob.CompletedAt != nil {
		return *lastJob.CompletedAt, nil
	}
	return lastJob.CreatedAt, nil
}

func (s *Scheduler) mintJob(ctx context.Context, configID string) failure.ClassifiedError {
	job, err := s.jobs.CreateJob(ctx, configID)
	if err != nil {
		return err
	}

	payload, marshalErr := marshalJobPayload(job.ID, time.Now().UTC())
	if marshalErr != nil {
		return newInvalidScheduleError(configID, marshalErr.Error())
	}

	if _, err := s.jobQueue.Enqueue(ctx, s.queueName, payload); err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) recordError(action, configID string, err failure.ClassifiedError) {
	if s.metadataSink == nil || err == nil {
		return
	}
	attrs := []metadata.Attribute{}
	if configID != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrConfigID, configID))
	}
	s.metadataSink.RecordError(time.Now(), "jobscheduler", action, causeForErr(err), err.Error(), attrs)
}

func causeForErr(err failure.ClassifiedError) metadata.ErrorCause {
	kinded, ok := err.(failure.Kinded)
	if !ok {
		return metadata.CauseUnknown
	}
	switch kinded.Kind() {
	case failure.KindQueue, failure.KindExternalService:
		return metadata.CauseNetworkFailure
	case failure.KindDatabase, failure.KindStorage:
		return metadata.CauseStorageFailure
	case failure.KindInvalidInput:
		return metadata.CauseContentInvalid
	case failure.KindNotFound:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
