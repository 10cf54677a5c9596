package domain

import "time"

// ScraperConfig is the persisted crawl specification: which site to crawl, which
// URLs are in scope, and under what limits and politeness settings.
type ScraperConfig struct {
	ID                   string
	Name                 string
	Description          string
	BaseURL              string
	IncludePatterns      []string
	ExcludePatterns      []string
	MaxDepth             int
	MaxPagesPerJob       *int
	RespectRobotsTxt     bool
	UserAgent            string
	RequestDelayMs       int
	MaxConcurrentRequests int
	Schedule             *string
	Headers              map[string]string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Active               bool
}

// NewScraperConfig builds a ScraperConfig with the same defaults the crawl service
// has always shipped: robots.txt respected, a five-way concurrency cap, and a
// one-second per-host delay.
func NewScraperConfig(name, baseURL string, includePatterns, excludePatterns []string, maxDepth int) ScraperConfig {
	now := time.Now().UTC()
	return ScraperConfig{
		ID:                   NewID(),
		Name:                 name,
		BaseURL:              baseURL,
		IncludePatterns:      includePatterns,
		ExcludePatterns:      excludePatterns,
		MaxDepth:             maxDepth,
		RespectRobotsTxt:     true,
		UserAgent:            "crawlservice-bot/1.0",
		RequestDelayMs:       1000,
		MaxConcurrentRequests: 5,
		Headers:              map[string]string{},
		CreatedAt:            now,
		UpdatedAt:            now,
		Active:               true,
	}
}
