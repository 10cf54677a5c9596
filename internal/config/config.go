package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds every operational knob the crawl service's collaborators need
// to start: the crawler's fetch defaults, the queue's Redis address and
// visibility timeout, the scheduler's poll interval, the relational store's
// DSN, the object store's credentials, and the markdown converter's address.
// It is distinct from internal/domain.Config, which is the crawl
// specification persisted per configs row.
type Config struct {
	//===============
	// Crawler defaults
	//===============
	// Fallback values used when a ScraperConfig field is unset.
	defaultUserAgent             string
	defaultRequestDelay          time.Duration
	defaultMaxConcurrentRequests int
	// Per-fetch network timeout.
	fetchTimeout time.Duration
	// Maximum bytes read from a response body before it is treated as oversized.
	maxContentLength int64
	// Retry tuning for the crawler's HTML fetcher.
	maxAttempt             int
	backoffInitialDuration time.Duration
	backoffMultiplier      float64
	backoffMaxDuration     time.Duration
	jitter                 time.Duration
	randomSeed             int64

	//===============
	// Job queue
	//===============
	redisAddr         string
	redisPassword     string
	redisDB           int
	queueName         string
	visibilityTimeout time.Duration

	//===============
	// Scheduler
	//===============
	schedulerPollInterval time.Duration

	//===============
	// Relational store
	//===============
	databaseURL string

	//===============
	// Object store
	//===============
	objectStoreEndpoint  string
	objectStoreAccessKey string
	objectStoreSecretKey string
	objectStoreBucket    string
	objectStoreUseSSL    bool

	//===============
	// Markdown converter
	//===============
	markdownServiceAddr string
}

type configDTO struct {
	DefaultUserAgent             string        `json:"defaultUserAgent,omitempty"`
	DefaultRequestDelay          time.Duration `json:"defaultRequestDelay,omitempty"`
	DefaultMaxConcurrentRequests int           `json:"defaultMaxConcurrentRequests,omitempty"`
	FetchTimeout                 time.Duration `json:"fetchTimeout,omitempty"`
	MaxContentLength             int64         `json:"maxContentLength,omitempty"`
	MaxAttempt                   int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration       time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier            float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration           time.Duration `json:"backoffMaxDuration,omitempty"`
	Jitter                       time.Duration `json:"jitter,omitempty"`
	RandomSeed                   int64         `json:"randomSeed,omitempty"`

	RedisAddr         string        `json:"redisAddr,omitempty"`
	RedisPassword     string        `json:"redisPassword,omitempty"`
	RedisDB           int           `json:"redisDb,omitempty"`
	QueueName         string        `json:"queueName,omitempty"`
	VisibilityTimeout time.Duration `json:"visibilityTimeout,omitempty"`

	SchedulerPollInterval time.Duration `json:"schedulerPollInterval,omitempty"`

	DatabaseURL string `json:"databaseUrl,omitempty"`

	ObjectStoreEndpoint  string `json:"objectStoreEndpoint,omitempty"`
	ObjectStoreAccessKey string `json:"objectStoreAccessKey,omitempty"`
	ObjectStoreSecretKey string `json:"objectStoreSecretKey,omitempty"`
	ObjectStoreBucket    string `json:"objectStoreBucket,omitempty"`
	ObjectStoreUseSSL    bool   `json:"objectStoreUseSsl,omitempty"`

	MarkdownServiceAddr string `json:"markdownServiceAddr,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg, err := WithDefault().Build()
	if err != nil {
		return Config{}, err
	}

	if dto.DefaultUserAgent != "" {
		cfg.defaultUserAgent = dto.DefaultUserAgent
	}
	if dto.DefaultRequestDelay != 0 {
		cfg.defaultRequestDelay = dto.DefaultRequestDelay
	}
	if dto.DefaultMaxConcurrentRequests != 0 {
		cfg.defaultMaxConcurrentRequests = dto.DefaultMaxConcurrentRequests
	}
	if dto.FetchTimeout != 0 {
		cfg.fetchTimeout = dto.FetchTimeout
	}
	if dto.MaxContentLength != 0 {
		cfg.maxContentLength = dto.MaxContentLength
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.RedisAddr != "" {
		cfg.redisAddr = dto.RedisAddr
	}
	if dto.RedisPassword != "" {
		cfg.redisPassword = dto.RedisPassword
	}
	if dto.RedisDB != 0 {
		cfg.redisDB = dto.RedisDB
	}
	if dto.QueueName != "" {
		cfg.queueName = dto.QueueName
	}
	if dto.VisibilityTimeout != 0 {
		cfg.visibilityTimeout = dto.VisibilityTimeout
	}
	if dto.SchedulerPollInterval != 0 {
		cfg.schedulerPollInterval = dto.SchedulerPollInterval
	}
	if dto.DatabaseURL != "" {
		cfg.databaseURL = dto.DatabaseURL
	}
	if dto.ObjectStoreEndpoint != "" {
		cfg.objectStoreEndpoint = dto.ObjectStoreEndpoint
	}
	if dto.ObjectStoreAccessKey != "" {
		cfg.objectStoreAccessKey = dto.ObjectStoreAccessKey
	}
	if dto.ObjectStoreSecretKey != "" {
		cfg.objectStoreSecretKey = dto.ObjectStoreSecretKey
	}
	if dto.ObjectStoreBucket != "" {
		cfg.objectStoreBucket = dto.ObjectStoreBucket
	}
	cfg.objectStoreUseSSL = dto.ObjectStoreUseSSL
	if dto.MarkdownServiceAddr != "" {
		cfg.markdownServiceAddr = dto.MarkdownServiceAddr
	}

	return cfg, nil
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	if err := json.Unmarshal(configContent, &cfgDTO); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config with the service's standard defaults:
// a five-second fetch timeout, five-way crawler concurrency, a one-second
// per-host delay, a five-minute queue visibility timeout, and local
// development addresses for Redis/Postgres/MinIO.
func WithDefault() *Config {
	return &Config{
		defaultUserAgent:             "crawlservice-bot/1.0",
		defaultRequestDelay:          time.Second,
		defaultMaxConcurrentRequests: 5,
		fetchTimeout:                 5 * time.Second,
		maxContentLength:             10 * 1024 * 1024,
		maxAttempt:                   3,
		backoffInitialDuration:       200 * time.Millisecond,
		backoffMultiplier:            2.0,
		backoffMaxDuration:           10 * time.Second,
		jitter:                       0,
		randomSeed:                   time.Now().UnixNano(),

		redisAddr:         "localhost:6379",
		queueName:         "crawl_jobs",
		visibilityTimeout: 5 * time.Minute,

		schedulerPollInterval: 30 * time.Second,

		databaseURL: "postgres://localhost:5432/crawlservice?sslmode=disable",

		objectStoreEndpoint:  "localhost:9000",
		objectStoreAccessKey: "minioadmin",
		objectStoreSecretKey: "minioadmin",
		objectStoreBucket:    "crawl-artifacts",
		objectStoreUseSSL:    false,

		markdownServiceAddr: "localhost:50051",
	}
}

func (c *Config) WithDefaultUserAgent(v string) *Config             { c.defaultUserAgent = v; return c }
func (c *Config) WithDefaultRequestDelay(v time.Duration) *Config   { c.defaultRequestDelay = v; return c }
func (c *Config) WithDefaultMaxConcurrentRequests(v int) *Config    { c.defaultMaxConcurrentRequests = v; return c }
func (c *Config) WithFetchTimeout(v time.Duration) *Config          { c.fetchTimeout = v; return c }
func (c *Config) WithMaxContentLength(v int64) *Config              { c.maxContentLength = v; return c }
func (c *Config) WithMaxAttempt(v int) *Config                      { c.maxAttempt = v; return c }
func (c *Config) WithBackoffInitialDuration(v time.Duration) *Config { c.backoffInitialDuration = v; return c }
func (c *Config) WithBackoffMultiplier(v float64) *Config           { c.backoffMultiplier = v; return c }
func (c *Config) WithBackoffMaxDuration(v time.Duration) *Config    { c.backoffMaxDuration = v; return c }
func (c *Config) WithJitter(v time.Duration) *Config                { c.jitter = v; return c }
func (c *Config) WithRandomSeed(v int64) *Config                     { c.randomSeed = v; return c }

func (c *Config) WithRedisAddr(v string) *Config            { c.redisAddr = v; return c }
func (c *Config) WithRedisPassword(v string) *Config        { c.redisPassword = v; return c }
func (c *Config) WithRedisDB(v int) *Config                 { c.redisDB = v; return c }
func (c *Config) WithQueueName(v string) *Config            { c.queueName = v; return c }
func (c *Config) WithVisibilityTimeout(v time.Duration) *Config { c.visibilityTimeout = v; return c }

func (c *Config) WithSchedulerPollInterval(v time.Duration) *Config { c.schedulerPollInterval = v; return c }

func (c *Config) WithDatabaseURL(v string) *Config { c.databaseURL = v; return c }

func (c *Config) WithObjectStoreEndpoint(v string) *Config  { c.objectStoreEndpoint = v; return c }
func (c *Config) WithObjectStoreAccessKey(v string) *Config { c.objectStoreAccessKey = v; return c }
func (c *Config) WithObjectStoreSecretKey(v string) *Config { c.objectStoreSecretKey = v; return c }
func (c *Config) WithObjectStoreBucket(v string) *Config    { c.objectStoreBucket = v; return c }
func (c *Config) WithObjectStoreUseSSL(v bool) *Config      { c.objectStoreUseSSL = v; return c }

func (c *Config) WithMarkdownServiceAddr(v string) *Config { c.markdownServiceAddr = v; return c }

func (c *Config) Build() (Config, error) {
	if c.redisAddr == "" {
		return Config{}, fmt.Errorf("%w: redisAddr cannot be empty", ErrInvalidConfig)
	}
	if c.databaseURL == "" {
		return Config{}, fmt.Errorf("%w: databaseUrl cannot be empty", ErrInvalidConfig)
	}
	if c.defaultMaxConcurrentRequests <= 0 {
		return Config{}, fmt.Errorf("%w: defaultMaxConcurrentRequests must be positive", ErrInvalidConfig)
	}
	return *c, nil
}

func (c Config) DefaultUserAgent() string                  { return c.defaultUserAgent }
func (c Config) DefaultRequestDelay() time.Duration        { return c.defaultRequestDelay }
func (c Config) DefaultMaxConcurrentRequests() int         { return c.defaultMaxConcurrentRequests }
func (c Config) FetchTimeout() time.Duration               { return c.fetchTimeout }
func (c Config) MaxContentLength() int64                   { return c.maxContentLength }
func (c Config) MaxAttempt() int                            { return c.maxAttempt }
func (c Config) BackoffInitialDuration() time.Duration      { return c.backoffInitialDuration }
func (c Config) BackoffMultiplier() float64                 { return c.backoffMultiplier }
func (c Config) BackoffMaxDuration() time.Duration          { return c.backoffMaxDuration }
func (c Config) Jitter() time.Duration                      { return c.jitter }
func (c Config) RandomSeed() int64                          { return c.randomSeed }

func (c Config) RedisAddr() string                { return c.redisAddr }
func (c Config) RedisPassword() string            { return c.redisPassword }
func (c Config) RedisDB() int                     { return c.redisDB }
func (c Config) QueueName() string                { return c.queueName }
func (c Config) VisibilityTimeout() time.Duration { return c.visibilityTimeout }

func (c Config) SchedulerPollInterval() time.Duration { return c.schedulerPollInterval }

func (c Config) DatabaseURL() string { return c.databaseURL }

func (c Config) ObjectStoreEndpoint() string  { return c.objectStoreEndpoint }
func (c Config) ObjectStoreAccessKey() string { return c.objectStoreAccessKey }
func (c Config) ObjectStoreSecretKey() string { return c.objectStoreSecretKey }
func (c Config) ObjectStoreBucket() string    { return c.objectStoreBucket }
func (c Config) ObjectStoreUseSSL() bool      { return c.objectStoreUseSSL }

func (c Config) MarkdownServiceAddr() string { return c.markdownServiceAddr }
