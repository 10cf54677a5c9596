package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rohmanhakim/crawlservice/internal/config"
	"github.com/rohmanhakim/crawlservice/internal/crawler"
	"github.com/rohmanhakim/crawlservice/internal/domain"
	"github.com/rohmanhakim/crawlservice/internal/htmlfetch"
	"github.com/rohmanhakim/crawlservice/internal/htmlparse"
	"github.com/rohmanhakim/crawlservice/internal/mdconvert"
	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/internal/objectstore"
	"github.com/rohmanhakim/crawlservice/internal/queue"
	"github.com/rohmanhakim/crawlservice/internal/robots"
	"github.com/rohmanhakim/crawlservice/internal/robots/cache"
	"github.com/rohmanhakim/crawlservice/internal/store"
	"github.com/rohmanhakim/crawlservice/internal/worker"
	"github.com/rohmanhakim/crawlservice/pkg/limiter"
	"github.com/rohmanhakim/crawlservice/pkg/retry"
	"github.com/rohmanhakim/crawlservice/pkg/timeutil"
)

var workerID string

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Operate the crawl worker process.",
}

var workerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Drain the job queue and crawl sites until interrupted.",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runWorker(c.Context(), cfg)
	},
}

func init() {
	workerCmd.AddCommand(workerRunCmd)
	rootCmd.AddCommand(workerCmd)
	workerRunCmd.Flags().StringVar(&workerID, "worker-id", "", "identifies this worker in job ownership records; defaults to a generated id")
}

// runWorker wires every collaborator the worker depends on and runs it until
// ctx is cancelled (SIGINT/SIGTERM). The rate limiter and robots cache are
// process-global: every per-job crawler the factory builds shares the same
// limiter and cache instance rather than each owning its own, since both are
// safe for concurrent use across jobs and the politeness/caching they provide
// is only meaningful when shared.
func runWorker(parentCtx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Migrate(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("worker: %w", err)
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("worker: connect to database: %w", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword(),
		DB:       cfg.RedisDB(),
	})
	defer redisClient.Close()

	minioClient, err := minio.New(cfg.ObjectStoreEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ObjectStoreAccessKey(), cfg.ObjectStoreSecretKey(), ""),
		Secure: cfg.ObjectStoreUseSSL(),
	})
	if err != nil {
		return fmt.Errorf("worker: connect to object store: %w", err)
	}

	sink := metadata.NewRecorder("worker")

	htmlBucket := cfg.ObjectStoreBucket() + "-html"
	markdownBucket := cfg.ObjectStoreBucket() + "-markdown"
	objectSink := objectstore.NewMinioSink(minioClient, htmlBucket, markdownBucket, sink)
	if err := objectSink.EnsureBuckets(ctx); err != nil {
		return fmt.Errorf("worker: %w", err)
	}

	converter, err := mdconvert.DialGRPCConverter(cfg.MarkdownServiceAddr(), sink)
	if err != nil {
		return fmt.Errorf("worker: dial markdown service: %w", err)
	}

	jobStore := store.NewJobStore(pool)
	configStore := store.NewConfigStore(pool)
	pageStore := store.NewPageStore(pool)

	jobQueue := queue.NewRedisJobQueue(redisClient, cfg.VisibilityTimeout(), sink)

	rateLimiter := limiter.NewConcurrentRateLimiter()
	robotsCache := cache.NewMemoryCache()

	newCrawler := func(scraperCfg domain.ScraperConfig) worker.PageFetcher {
		fetcher := htmlfetch.NewHtmlFetcher(sink, cfg.MaxContentLength())
		fetcher.Init(&http.Client{Timeout: cfg.FetchTimeout()})
		parser := htmlparse.NewParser(sink)

		robotChecker := robots.NewCachedRobot(sink)
		userAgent := scraperCfg.UserAgent
		if userAgent == "" {
			userAgent = cfg.DefaultUserAgent()
		}
		robotChecker.InitWithCache(userAgent, robotsCache)

		maxConcurrent := scraperCfg.MaxConcurrentRequests
		if maxConcurrent <= 0 {
			maxConcurrent = cfg.DefaultMaxConcurrentRequests()
		}

		backoffParam := timeutil.NewBackoffParam(cfg.BackoffInitialDuration(), cfg.BackoffMultiplier(), cfg.BackoffMaxDuration())
		retryParam := retry.NewRetryParam(cfg.DefaultRequestDelay(), cfg.Jitter(), cfg.RandomSeed(), cfg.MaxAttempt(), backoffParam)

		built := crawler.NewCrawler(&robotChecker, &fetcher, parser, rateLimiter, maxConcurrent, retryParam, scraperCfg.RespectRobotsTxt, userAgent)
		return &built
	}

	id := workerID
	if id == "" {
		id = domain.NewID()
	}

	w := worker.NewWorker(id, &jobStore, &configStore, &pageStore, &jobQueue, cfg.QueueName(), &objectSink, converter, newCrawler, sink, 0)

	log.Info().Str("worker_id", id).Msg("worker starting")
	w.Run(ctx)
	log.Info().Str("worker_id", id).Msg("worker stopped")
	return nil
}
