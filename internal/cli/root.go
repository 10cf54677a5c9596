package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/crawlservice/internal/build"
	"github.com/rohmanhakim/crawlservice/internal/config"
)

var (
	cfgFile    string
	databaseURL string
	redisAddr  string
	objectStoreEndpoint string
)

// rootCmd is the base command: it carries no behavior of its own, only the
// persistent flags every subcommand (worker, scheduler, queue) shares.
var rootCmd = &cobra.Command{
	Use:   "crawlctl",
	Short: "Operate the crawl service's worker, scheduler, and job queue.",
	Long: `crawlctl runs the crawl service's long-lived processes: the worker
that drains the job queue and crawls sites page by page, and the scheduler
that mints new jobs from cron-style schedules. It also exposes a one-shot
command to enqueue a job by hand.`,
	Version: build.FullVersion(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "overrides the config's Postgres DSN")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "overrides the config's Redis address")
	rootCmd.PersistentFlags().StringVar(&objectStoreEndpoint, "object-store-endpoint", "", "overrides the config's MinIO endpoint")
}

// loadConfig reads the config file if one was given, otherwise starts from
// the service defaults, then applies any flag overrides on top.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("loading config file: %w", err)
		}
	} else {
		cfg, err = config.WithDefault().Build()
		if err != nil {
			return config.Config{}, fmt.Errorf("building default config: %w", err)
		}
	}

	builder := (&cfg)
	if databaseURL != "" {
		builder = builder.WithDatabaseURL(databaseURL)
	}
	if redisAddr != "" {
		builder = builder.WithRedisAddr(redisAddr)
	}
	if objectStoreEndpoint != "" {
		builder = builder.WithObjectStoreEndpoint(objectStoreEndpoint)
	}
	return builder.Build()
}
