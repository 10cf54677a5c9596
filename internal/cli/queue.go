package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/rohmanhakim/crawlservice/internal/config"
	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/internal/queue"
	"github.com/rohmanhakim/crawlservice/internal/store"
)

var enqueueConfigID string

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Operate the job queue directly.",
}

var queueEnqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Create a job for a config and enqueue it by hand, bypassing the scheduler.",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runEnqueue(c.Context(), cfg)
	},
}

func init() {
	queueEnqueueCmd.Flags().StringVar(&enqueueConfigID, "config-id", "", "id of the scraper config to run (required)")
	queueCmd.AddCommand(queueEnqueueCmd)
	rootCmd.AddCommand(queueCmd)
}

type manualJobPayload struct {
	JobID      string `json:"job_id"`
	EnqueuedAt string `json:"enqueued_at"`
}

func runEnqueue(ctx context.Context, cfg config.Config) error {
	if enqueueConfigID == "" {
		return fmt.Errorf("queue enqueue: --config-id is required")
	}

	if err := store.Migrate(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("queue enqueue: %w", err)
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("queue enqueue: connect to database: %w", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword(),
		DB:       cfg.RedisDB(),
	})
	defer redisClient.Close()

	sink := metadata.NewRecorder("queue-enqueue")

	jobStore := store.NewJobStore(pool)
	job, jobErr := jobStore.CreateJob(ctx, enqueueConfigID)
	if jobErr != nil {
		return fmt.Errorf("queue enqueue: create job: %w", jobErr)
	}

	payload, marshalErr := json.Marshal(manualJobPayload{JobID: job.ID, EnqueuedAt: time.Now().UTC().Format(time.RFC3339)})
	if marshalErr != nil {
		return fmt.Errorf("queue enqueue: encode payload: %w", marshalErr)
	}

	jobQueue := queue.NewRedisJobQueue(redisClient, cfg.VisibilityTimeout(), sink)
	if _, enqueueErr := jobQueue.Enqueue(ctx, cfg.QueueName(), payload); enqueueErr != nil {
		return fmt.Errorf("queue enqueue: %w", enqueueErr)
	}

	fmt.Printf("enqueued job %s for config %s\n", job.ID, enqueueConfigID)
	return nil
}
