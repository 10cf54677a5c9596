package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rohmanhakim/crawlservice/internal/config"
	"github.com/rohmanhakim/crawlservice/internal/jobscheduler"
	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/internal/queue"
	"github.com/rohmanhakim/crawlservice/internal/store"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Operate the cron-driven job scheduler process.",
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Sweep schedule-carrying configs and mint due jobs until interrupted.",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runScheduler(c.Context(), cfg)
	},
}

func init() {
	schedulerCmd.AddCommand(schedulerRunCmd)
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(parentCtx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Migrate(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("scheduler: connect to database: %w", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword(),
		DB:       cfg.RedisDB(),
	})
	defer redisClient.Close()

	sink := metadata.NewRecorder("jobscheduler")

	configStore := store.NewConfigStore(pool)
	jobStore := store.NewJobStore(pool)
	jobQueue := queue.NewRedisJobQueue(redisClient, cfg.VisibilityTimeout(), sink)

	scheduler := jobscheduler.NewScheduler(&configStore, &jobStore, &jobQueue, cfg.QueueName(), sink, cfg.SchedulerPollInterval())

	log.Info().Msg("scheduler starting")
	scheduler.Run(ctx)
	log.Info().Msg("scheduler stopped")
	return nil
}
