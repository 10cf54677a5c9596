package domain

import "time"

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Job is one crawl run of a ScraperConfig. Status moves Pending -> Running ->
// {Completed, Failed, Cancelled} and never backwards.
type Job struct {
	ID            string
	ConfigID      string
	Status        JobStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	ErrorMessage  *string
	PagesCrawled  int
	PagesFailed   int
	PagesSkipped  int
	NextRunAt     *time.Time
	WorkerID      *string
	Metadata      map[string]string
}

// NewJob creates a Job in the Pending state, ready to be enqueued.
func NewJob(configID string) Job {
	now := time.Now().UTC()
	return Job{
		ID:        NewID(),
		ConfigID:  configID,
		Status:    JobPending,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  map[string]string{},
	}
}

func (j *Job) Start(workerID string) {
	now := time.Now().UTC()
	j.Status = JobRunning
	j.StartedAt = &now
	j.UpdatedAt = now
	j.WorkerID = &workerID
}

func (j *Job) Complete() {
	now := time.Now().UTC()
	j.Status = JobCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
}

func (j *Job) Fail(errMsg string) {
	now := time.Now().UTC()
	j.Status = JobFailed
	j.ErrorMessage = &errMsg
	j.CompletedAt = &now
	j.UpdatedAt = now
}

func (j *Job) Cancel() {
	now := time.Now().UTC()
	j.Status = JobCancelled
	j.CompletedAt = &now
	j.UpdatedAt = now
}

func (j *Job) IncrementCrawled() {
	j.PagesCrawled++
	j.UpdatedAt = time.Now().UTC()
}

func (j *Job) IncrementFailed() {
	j.PagesFailed++
	j.UpdatedAt = time.Now().UTC()
}

func (j *Job) IncrementSkipped() {
	j.PagesSkipped++
	j.UpdatedAt = time.Now().UTC()
}

// Terminal reports whether the job has reached a terminal status and will
// never transition again.
func (j *Job) Terminal() bool {
	switch j.Status {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	default:
		return false
	}
}
