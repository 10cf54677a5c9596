package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/rohmanhakim/crawlservice/internal/domain"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

/*
Responsibilities

- Persist and load configs rows
- Translate between domain.ScraperConfig and its relational row shape
  (JSONB for pattern lists and headers)
*/

type ConfigStore struct {
	db Querier
}

func NewConfigStore(db Querier) ConfigStore {
	return ConfigStore{db: db}
}

func (s *ConfigStore) Create(ctx context.Context, cfg domain.ScraperConfig) failure.ClassifiedError {
	includePatterns, err := json.Marshal(cfg.IncludePatterns)
	if err != nil {
		return newConnectionError(err.Error())
	}
	excludePatterns, err := json.Marshal(cfg.ExcludePatterns)
	if err != nil {
		return newConnectionError(err.Error())
	}
	headers, err := json.Marshal(cfg.Headers)
	if err != nil {
		return newConnectionError(err.Error())
	}

	_, execErr := s.db.Exec(ctx, `
		INSERT INTO configs (
			id, name, description, base_url, include_patterns, exclude_patterns,
			max_depth, max_pages_per_job, respect_robots_txt, user_agent,
			request_delay_ms, max_concurrent_requests, schedule, headers,
			created_at, updated_at, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`,
		cfg.ID, cfg.Name, cfg.Description, cfg.BaseURL, includePatterns, excludePatterns,
		cfg.MaxDepth, cfg.MaxPagesPerJob, cfg.RespectRobotsTxt, cfg.UserAgent,
		cfg.RequestDelayMs, cfg.MaxConcurrentRequests, cfg.Schedule, headers,
		cfg.CreatedAt, cfg.UpdatedAt, cfg.Active,
	)
	if execErr != nil {
		return newConnectionError(execErr.Error())
	}
	return nil
}

func (s *ConfigStore) Get(ctx context.Context, id string) (domain.ScraperConfig, failure.ClassifiedError) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, description, base_url, include_patterns, exclude_patterns,
			max_depth, max_pages_per_job, respect_robots_txt, user_agent,
			request_delay_ms, max_concurrent_requests, schedule, headers,
			created_at, updated_at, active
		FROM configs WHERE id = $1
	`, id)

	cfg, err := scanConfig(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScraperConfig{}, newNotFoundError("config", id)
	}
	if err != nil {
		return domain.ScraperConfig{}, newConnectionError(err.Error())
	}
	return cfg, nil
}

// ListSchedulable returns every active config carrying a non-empty cron
// schedule, for the scheduler's check_schedules sweep.
func (s *ConfigStore) ListSchedulable(ctx context.Context) ([]domain.ScraperConfig, failure.ClassifiedError) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, base_url, include_patterns, exclude_patterns,
			max_depth, max_pages_per_job, respect_robots_txt, user_agent,
			request_delay_ms, max_concurrent_requests, schedule, headers,
			created_at, updated_at, active
		FROM configs WHERE active = TRUE AND schedule IS NOT NULL
	`)
	if err != nil {
		return nil, newConnectionError(err.Error())
	}
	defer rows.Close()

	var configs []domain.ScraperConfig
	for rows.Next() {
		cfg, scanErr := scanConfig(rows)
		if scanErr != nil {
			return nil, newConnectionError(scanErr.Error())
		}
		configs = append(configs, cfg)
	}
	if rows.Err() != nil {
		return nil, newConnectionError(rows.Err().Error())
	}
	return configs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConfig(row rowScanner) (domain.ScraperConfig, error) {
	var cfg domain.ScraperConfig
	var includePatterns, excludePatterns, headers []byte

	err := row.Scan(
		&cfg.ID, &cfg.Name, &cfg.Description, &cfg.BaseURL, &includePatterns, &excludePatterns,
		&cfg.MaxDepth, &cfg.MaxPagesPerJob, &cfg.RespectRobotsTxt, &cfg.UserAgent,
		&cfg.RequestDelayMs, &cfg.MaxConcurrentRequests, &cfg.Schedule, &headers,
		&cfg.CreatedAt, &cfg.UpdatedAt, &cfg.Active,
	)
	if err != nil {
		return domain.ScraperConfig{}, err
	}

	if err := json.Unmarshal(includePatterns, &cfg.IncludePatterns); err != nil {
		return domain.ScraperConfig{}, err
	}
	if err := json.Unmarshal(excludePatterns, &cfg.ExcludePatterns); err != nil {
		return domain.ScraperConfig{}, err
	}
	if err := json.Unmarshal(headers, &cfg.Headers); err != nil {
		return domain.ScraperConfig{}, err
	}

	return cfg, nil
}
