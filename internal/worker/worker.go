package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/crawlservice/internal/crawler"
	"github.com/rohmanhakim/crawlservice/internal/domain"
	"github.com/rohmanhakim/crawlservice/internal/frontier"
	"github.com/rohmanhakim/crawlservice/internal/mdconvert"
	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/internal/objectstore"
	"github.com/rohmanhakim/crawlservice/internal/queue"
	"github.com/rohmanhakim/crawlservice/internal/store"
	"github.com/rohmanhakim/crawlservice/internal/urlfilter"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

/*
Responsibilities

- Pull one job at a time off the job queue and drive it to a terminal state
- Own the per-job frontier: a LIFO stack of discovered URLs plus a visited
  set, both constructed fresh for every job and discarded when it ends
- Persist every crawled page (HTML, then Markdown, then the row) and bump
  the job's running counters before moving to the next URL
- Never let a single URL's failure end the job: only an error outside the
  per-URL crawl step (a missing job/config, an unparseable base URL) does

State machine (spec'd, not negotiable):

	dequeue -> load Job -> terminal? complete(queue) and return
	        -> mark Running, persist (started_at, worker_id)
	        -> load Config, seed frontier with (base_url, depth=0, parent=nil)
	        -> loop: frontier empty? break. max_pages reached? break.
	                 pop (url, depth, parent).
	                 url visited? skip.
	                 fetch; persist page; bump counters; push discovered at depth+1 if depth < max_depth.
	                 mark url visited.
	        -> mark Completed (or Cancelled, if observed mid-loop), persist completed_at
	        -> complete(queue)
*/

// PageFetcher is the slice of crawler.Crawler the worker depends on, narrow
// enough to be faked in tests without exercising the real fetch/robots/parse
// pipeline.
type PageFetcher interface {
	Fetch(ctx context.Context, target url.URL, depth int, parent *string, filter *urlfilter.Filter) (domain.Page, []string, failure.ClassifiedError)
}

var _ PageFetcher = (*crawler.Crawler)(nil)

// CrawlerFactory builds a PageFetcher scoped to one ScraperConfig: its
// concurrency cap, user agent, and robots.txt policy all vary per config, so
// a fresh Crawler is built per job rather than shared across the process.
// Collaborators the factory closes over (the robots cache, the rate
// limiter) are expected to be constructed once and shared by reference.
type CrawlerFactory func(cfg domain.ScraperConfig) PageFetcher

// JobRepository is the slice of store.JobStore the worker depends on, narrow
// enough to be faked in tests without a live Postgres connection.
type JobRepository interface {
	Get(ctx context.Context, id string) (domain.Job, failure.ClassifiedError)
	MarkRunning(ctx context.Context, id, workerID string) failure.ClassifiedError
	MarkCompleted(ctx context.Context, id string) failure.ClassifiedError
	MarkFailed(ctx context.Context, id, errMsg string) failure.ClassifiedError
	MarkCancelled(ctx context.Context, id string) failure.ClassifiedError
	UpdateJobStats(ctx context.Context, id string, counter store.PageCounter) failure.ClassifiedError
}

// ConfigRepository is the slice of store.ConfigStore the worker depends on.
type ConfigRepository interface {
	Get(ctx context.Context, id string) (domain.ScraperConfig, failure.ClassifiedError)
}

// PageRepository is the slice of store.PageStore the worker depends on.
type PageRepository interface {
	Save(ctx context.Context, page domain.Page) failure.ClassifiedError
}

const (
	defaultPollTimeout  = 5 * time.Second
	cancelCheckInterval = 10 // re-read job status every N crawled pages
	errorBackoff        = 2 * time.Second
)

type Worker struct {
	id           string
	jobs         JobRepository
	configs      ConfigRepository
	pages        PageRepository
	jobQueue     queue.JobQueue
	queueName    string
	objects      objectstore.Sink
	converter    mdconvert.ConvertRule
	newCrawler   CrawlerFactory
	metadataSink metadata.MetadataSink
	pollTimeout  time.Duration
}

func NewWorker(
	id string,
	jobs JobRepository,
	configs ConfigRepository,
	pages PageRepository,
	jobQueue queue.JobQueue,
	queueName string,
	objects objectstore.Sink,
	converter mdconvert.ConvertRule,
	newCrawler CrawlerFactory,
	metadataSink metadata.MetadataSink,
	pollTimeout time.Duration,
) Worker {
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	return Worker{
		id:           id,
		jobs:         jobs,
		configs:      configs,
		pages:        pages,
		jobQueue:     jobQueue,
		queueName:    queueName,
		objects:      objects,
		converter:    converter,
		newCrawler:   newCrawler,
		metadataSink: metadataSink,
		pollTimeout:  pollTimeout,
	}
}

// Run dequeues and processes jobs until ctx is cancelled. It is meant to run
// as its own goroutine for the lifetime of the worker process.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		id, payload, ok, err := w.jobQueue.Dequeue(ctx, w.queueName, w.pollTimeout)
		if err != nil {
			w.recordError("Run.dequeue", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(errorBackoff):
			}
			continue
		}
		if !ok {
			continue
		}

		w.handleDequeued(ctx, id, payload)
	}
}

// handleDequeued drives one reservation from the queue to completion. The
// queue reservation is always completed exactly once, regardless of how the
// job itself turns out: a job's durable terminal state lives in the
// relational store, not in whether its queue entry is still outstanding.
func (w *Worker) handleDequeued(ctx context.Context, reservationID string, payload []byte) {
	jobID, err := decodeJobID(payload)
	if err != nil {
		w.recordError("handleDequeued.decode", newInvalidPayloadError(err.Error()))
		w.completeReservation(ctx, reservationID)
		return
	}

	job, getErr := w.jobs.Get(ctx, jobID)
	if getErr != nil {
		w.recordError("handleDequeued.loadJob", getErr)
		w.completeReservation(ctx, reservationID)
		return
	}

	if job.Terminal() {
		w.completeReservation(ctx, reservationID)
		return
	}

	if markErr := w.jobs.MarkRunning(ctx, job.ID, w.id); markErr != nil {
		w.recordError("handleDequeued.markRunning", markErr)
	}

	if procErr := w.processJob(ctx, job.ID); procErr != nil {
		if markErr := w.jobs.MarkFailed(ctx, job.ID, procErr.Error()); markErr != nil {
			w.recordError("handleDequeued.markFailed", markErr)
		}
	}

	w.completeReservation(ctx, reservationID)
}

func (w *Worker) completeReservation(ctx context.Context, reservationID string) {
	if err := w.jobQueue.Complete(ctx, w.queueName, reservationID); err != nil {
		// The job's relational state is already terminal at this point; a
		// failure here only means a stale processing:Q entry lingers until
		// its visibility timeout expires.
		w.recordError("completeReservation", err)
	}
}

// processJob runs the full frontier loop for one job: seed the stack with
// the config's base URL, then fetch/persist/discover until the frontier
// drains, the page budget is hit, or the job is observed cancelled.
func (w *Worker) processJob(ctx context.Context, jobID string) failure.ClassifiedError {
	job, err := w.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}

	cfg, err := w.configs.Get(ctx, job.ConfigID)
	if err != nil {
		return err
	}

	baseURL, parseErr := url.Parse(cfg.BaseURL)
	if parseErr != nil {
		return newInvalidBaseURLError(parseErr.Error())
	}

	filter := urlfilter.New(cfg.IncludePatterns, cfg.ExcludePatterns)
	pageCrawler := w.newCrawler(cfg)

	visited := frontier.NewSet[string]()
	stack := frontier.NewStack[frontierEntry]()
	stack.Push(newFrontierEntry(baseURL.String(), 0, nil))

	pagesCrawled := 0
	for stack.Size() > 0 {
		if cfg.MaxPagesPerJob != nil && pagesCrawled >= *cfg.MaxPagesPerJob {
			break
		}

		if pagesCrawled > 0 && pagesCrawled%cancelCheckInterval == 0 {
			cancelled, cancelErr := w.isCancelled(ctx, jobID)
			if cancelErr == nil && cancelled {
				return nil
			}
		}

		entry, _ := stack.Pop()

		if visited.Contains(entry.url) {
			continue
		}

		target, targetErr := url.Parse(entry.url)
		if targetErr != nil {
			visited.Add(entry.url)
			continue
		}

		page, discovered, fetchErr := pageCrawler.Fetch(ctx, *target, entry.depth, entry.parent, filter)
		if fetchErr != nil {
			// Admission-time rejection (filter, robots, infra): never reaches
			// the frontier as a crawled page at all.
			visited.Add(entry.url)
			continue
		}

		page.JobID = jobID
		w.persistPage(ctx, page, jobID)

		visited.Add(entry.url)
		pagesCrawled++

		if entry.depth < cfg.MaxDepth {
			parentURL := entry.url
			for _, discoveredURL := range discovered {
				if !visited.Contains(discoveredURL) {
					stack.Push(newFrontierEntry(discoveredURL, entry.depth+1, &parentURL))
				}
			}
		}
	}

	if cancelled, cancelErr := w.isCancelled(ctx, jobID); cancelErr == nil && cancelled {
		return nil
	}

	if completeErr := w.jobs.MarkCompleted(ctx, jobID); completeErr != nil {
		w.recordError("processJob.markCompleted", completeErr)
	}

	return nil
}

func (w *Worker) isCancelled(ctx context.Context, jobID string) (bool, failure.ClassifiedError) {
	current, err := w.jobs.Get(ctx, jobID)
	if err != nil {
		return false, err
	}
	if current.Status == domain.JobCancelled {
		if markErr := w.jobs.MarkCancelled(ctx, jobID); markErr != nil {
			w.recordError("isCancelled.markCancelled", markErr)
		}
		return true, nil
	}
	return false, nil
}

// persistPage runs the four-step persistence policy: upload HTML (if the
// fetch succeeded), convert and upload Markdown (if HTML was stored), clear
// the transient body and insert the page row, then bump job counters.
func (w *Worker) persistPage(ctx context.Context, page domain.Page, jobID string) {
	rawHTML := page.RawHTML

	if len(rawHTML) > 0 && !page.Failed() {
		if result, writeErr := w.objects.Write(ctx, jobID, page.NormalizedURL, objectstore.KindHTML, rawHTML); writeErr == nil {
			page.SetHTMLStoragePath(result.Key())
		} else {
			w.recordError("persistPage.writeHTML", writeErr)
		}
	}

	if page.HTMLStoragePath != nil {
		if markdownPath, convErr := w.convertAndStoreMarkdown(ctx, jobID, page, rawHTML); convErr == nil {
			page.SetMarkdownStoragePath(markdownPath)
		} else {
			w.recordError("persistPage.convertMarkdown", convErr)
		}
	}

	page.RawHTML = nil

	if err := w.pages.Save(ctx, page); err != nil {
		w.recordError("persistPage.save", err)
		return
	}

	if err := w.jobs.UpdateJobStats(ctx, jobID, store.PageCounterCrawled); err != nil {
		w.recordError("persistPage.updateStats.crawled", err)
	}
	if page.Failed() {
		if err := w.jobs.UpdateJobStats(ctx, jobID, store.PageCounterFailed); err != nil {
			w.recordError("persistPage.updateStats.failed", err)
		}
	}
}

func (w *Worker) convertAndStoreMarkdown(ctx context.Context, jobID string, page domain.Page, rawHTML []byte) (string, failure.ClassifiedError) {
	result, convErr := w.converter.Convert(ctx, rawHTML, page.URL, map[string]string{"job_id": jobID})
	if convErr != nil {
		return "", convErr
	}

	writeResult, writeErr := w.objects.Write(ctx, jobID, page.NormalizedURL, objectstore.KindMarkdown, result.GetMarkdownContent())
	if writeErr != nil {
		return "", writeErr
	}

	return writeResult.Key(), nil
}

func (w *Worker) recordError(action string, err failure.ClassifiedError) {
	if w.metadataSink == nil || err == nil {
		return
	}
	w.metadataSink.RecordError(time.Now(), "worker", action, causeForErr(err), err.Error(), []metadata.Attribute{
		metadata.NewAttr(metadata.AttrField, w.id),
	})
}

func causeForErr(err failure.ClassifiedError) metadata.ErrorCause {
	kinded, ok := err.(failure.Kinded)
	if !ok {
		return metadata.CauseUnknown
	}
	switch kinded.Kind() {
	case failure.KindExternalService, failure.KindQueue, failure.KindMarkdownService:
		return metadata.CauseNetworkFailure
	case failure.KindStorage, failure.KindDatabase:
		return metadata.CauseStorageFailure
	case failure.KindInvalidInput:
		return metadata.CauseContentInvalid
	case failure.KindNotFound:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}

// jobPayload is the queue payload shape producers write: a job id plus an
// informational enqueue timestamp. decodeJobID also accepts a bare
// UUID-string payload for compatibility with simpler producers.
type jobPayload struct {
	JobID      string `json:"job_id"`
	EnqueuedAt string `json:"enqueued_at,omitempty"`
}

func decodeJobID(payload []byte) (string, error) {
	var p jobPayload
	if err := json.Unmarshal(payload, &p); err == nil && p.JobID != "" {
		return p.JobID, nil
	}

	bare := strings.Trim(strings.TrimSpace(string(payload)), `"`)
	if bare == "" {
		return "", fmt.Errorf("worker: empty job payload")
	}
	return bare, nil
}
