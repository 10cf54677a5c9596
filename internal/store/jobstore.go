package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rohmanhakim/crawlservice/internal/domain"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

/*
Responsibilities

- Own the jobs table: create, look up, and drive a job through its status
  transitions
- Keep the per-job page counters (pages_crawled/failed/skipped) current as
  the worker pipeline processes pages
*/

type JobStore struct {
	db Querier
}

func NewJobStore(db Querier) JobStore {
	return JobStore{db: db}
}

// CreateJob mints a new pending Job for configID and persists it in one
// step, mirroring the teacher's pattern of handing the caller back a fully
// formed domain value rather than an id to re-fetch.
func (s *JobStore) CreateJob(ctx context.Context, configID string) (domain.Job, failure.ClassifiedError) {
	job := domain.NewJob(configID)
	metadata, err := json.Marshal(job.Metadata)
	if err != nil {
		return domain.Job{}, newConnectionError(err.Error())
	}

	_, execErr := s.db.Exec(ctx, `
		INSERT INTO jobs (
			id, config_id, status, created_at, updated_at, started_at, completed_at,
			error_message, pages_crawled, pages_failed, pages_skipped, next_run_at,
			worker_id, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		job.ID, job.ConfigID, string(job.Status), job.CreatedAt, job.UpdatedAt,
		job.StartedAt, job.CompletedAt, job.ErrorMessage, job.PagesCrawled,
		job.PagesFailed, job.PagesSkipped, job.NextRunAt, job.WorkerID, metadata,
	)
	if execErr != nil {
		return domain.Job{}, newConnectionError(execErr.Error())
	}
	return job, nil
}

func (s *JobStore) Get(ctx context.Context, id string) (domain.Job, failure.ClassifiedError) {
	row := s.db.QueryRow(ctx, `
		SELECT id, config_id, status, created_at, updated_at, started_at, completed_at,
			error_message, pages_crawled, pages_failed, pages_skipped, next_run_at,
			worker_id, metadata
		FROM jobs WHERE id = $1
	`, id)

	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Job{}, newNotFoundError("job", id)
	}
	if err != nil {
		return domain.Job{}, newConnectionError(err.Error())
	}
	return job, nil
}

// GetLastForConfig returns the most recently created job for configID, or
// ok=false if the config has never had a job. The scheduler uses this to
// find the reference time a cron schedule advances from.
func (s *JobStore) GetLastForConfig(ctx context.Context, configID string) (domain.Job, bool, failure.ClassifiedError) {
	row := s.db.QueryRow(ctx, `
		SELECT id, config_id, status, created_at, updated_at, started_at, completed_at,
			error_message, pages_crawled, pages_failed, pages_skipped, next_run_at,
			worker_id, metadata
		FROM jobs WHERE config_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, configID)

	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Job{}, false, nil
	}
	if err != nil {
		return domain.Job{}, false, newConnectionError(err.Error())
	}
	return job, true, nil
}

func (s *JobStore) MarkRunning(ctx context.Context, id, workerID string) failure.ClassifiedError {
	_, err := s.db.Exec(ctx, `
		UPDATE jobs SET status = $1, started_at = NOW(), updated_at = NOW(), worker_id = $2
		WHERE id = $3
	`, string(domain.JobRunning), workerID, id)
	if err != nil {
		return newConnectionError(err.Error())
	}
	return nil
}

func (s *JobStore) MarkCompleted(ctx context.Context, id string) failure.ClassifiedError {
	_, err := s.db.Exec(ctx, `
		UPDATE jobs SET status = $1, completed_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`, string(domain.JobCompleted), id)
	if err != nil {
		return newConnectionError(err.Error())
	}
	return nil
}

func (s *JobStore) MarkFailed(ctx context.Context, id, errMsg string) failure.ClassifiedError {
	_, err := s.db.Exec(ctx, `
		UPDATE jobs SET status = $1, error_message = $2, completed_at = NOW(), updated_at = NOW()
		WHERE id = $3
	`, string(domain.JobFailed), errMsg, id)
	if err != nil {
		return newConnectionError(err.Error())
	}
	return nil
}

func (s *JobStore) MarkCancelled(ctx context.Context, id string) failure.ClassifiedError {
	_, err := s.db.Exec(ctx, `
		UPDATE jobs SET status = $1, completed_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`, string(domain.JobCancelled), id)
	if err != nil {
		return newConnectionError(err.Error())
	}
	return nil
}

// UpdateJobStats bumps exactly one of the three page counters by one. The
// counter is chosen with a parameter, not string-built into the query, so
// the WHERE clause never carries anything but a bound id.
func (s *JobStore) UpdateJobStats(ctx context.Context, id string, counter PageCounter) failure.ClassifiedError {
	column, ok := counter.column()
	if !ok {
		return &StoreError{Message: "unknown page counter", Cause: ErrCauseConstraintViolation}
	}
	_, err := s.db.Exec(ctx, `
		UPDATE jobs SET `+column+` = `+column+` + 1, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return newConnectionError(err.Error())
	}
	return nil
}

func (s *JobStore) SetNextRunAt(ctx context.Context, id string, nextRunAt *time.Time) failure.ClassifiedError {
	_, err := s.db.Exec(ctx, `UPDATE jobs SET next_run_at = $1, updated_at = NOW() WHERE id = $2`, nextRunAt, id)
	if err != nil {
		return newConnectionError(err.Error())
	}
	return nil
}

// PageCounter names one of the three page counters a job tracks. It is a
// closed enum so UpdateJobStats can never be driven by caller-supplied SQL.
type PageCounter string

const (
	PageCounterCrawled PageCounter = "crawled"
	PageCounterFailed  PageCounter = "failed"
	PageCounterSkipped PageCounter = "skipped"
)

func (c PageCounter) column() (string, bool) {
	switch c {
	case PageCounterCrawled:
		return "pages_crawled", true
	case PageCounterFailed:
		return "pages_failed", true
	case PageCounterSkipped:
		return "pages_skipped", true
	default:
		return "", false
	}
}

func scanJob(row rowScanner) (domain.Job, error) {
	var job domain.Job
	var status string
	var metadata []byte

	err := row.Scan(
		&job.ID, &job.ConfigID, &status, &job.CreatedAt, &job.UpdatedAt, &job.StartedAt,
		&job.CompletedAt, &job.ErrorMessage, &job.PagesCrawled, &job.PagesFailed,
		&job.PagesSkipped, &job.NextRunAt, &job.WorkerID, &metadata,
	)
	if err != nil {
		return domain.Job{}, err
	}

	job.Status = domain.JobStatus(status)
	if err := json.Unmarshal(metadata, &job.Metadata); err != nil {
		return domain.Job{}, err
	}
	return job, nil
}
