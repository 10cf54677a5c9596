package crawler

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rohmanhakim/crawlservice/internal/domain"
	"github.com/rohmanhakim/crawlservice/internal/htmlfetch"
	"github.com/rohmanhakim/crawlservice/internal/htmlparse"
	"github.com/rohmanhakim/crawlservice/internal/robots"
	"github.com/rohmanhakim/crawlservice/internal/urlfilter"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
	"github.com/rohmanhakim/crawlservice/pkg/hashutil"
	"github.com/rohmanhakim/crawlservice/pkg/limiter"
	"github.com/rohmanhakim/crawlservice/pkg/retry"
	"github.com/rohmanhakim/crawlservice/pkg/urlutil"
)

/*
Responsibilities

- Compose the URL filter, robots cache, rate limiter, HTML fetcher, and HTML
  parser behind a single fetch operation
- Own the global concurrency semaphore shared across every fetch
- Never decide retry/continue/abort at the job or crawl level — that is the
  worker's job; Fetch only ever returns a terminal Page plus discovered URLs,
  or a CrawlError for URLs that were rejected before any HTTP request was made
*/

// RobotChecker is the subset of robots.CachedRobot the crawler depends on.
// The caller is responsible for calling Init/InitWithCache before first use.
type RobotChecker interface {
	Decide(target url.URL) (robots.Decision, error)
}

type Crawler struct {
	robot            RobotChecker
	fetcher          htmlfetch.Fetcher
	parser           htmlparse.Parser
	rateLimiter      limiter.RateLimiter
	sem              chan struct{}
	retryParam       retry.RetryParam
	respectRobotsTxt bool
	userAgent        string
}

func NewCrawler(
	robot RobotChecker,
	fetcher htmlfetch.Fetcher,
	parser htmlparse.Parser,
	rateLimiter limiter.RateLimiter,
	maxConcurrentRequests int,
	retryParam retry.RetryParam,
	respectRobotsTxt bool,
	userAgent string,
) Crawler {
	if maxConcurrentRequests < 1 {
		maxConcurrentRequests = 1
	}
	return Crawler{
		robot:            robot,
		fetcher:          fetcher,
		parser:           parser,
		rateLimiter:      rateLimiter,
		sem:              make(chan struct{}, maxConcurrentRequests),
		retryParam:       retryParam,
		respectRobotsTxt: respectRobotsTxt,
		userAgent:        userAgent,
	}
}

// Fetch runs the full single-page pipeline for target: URL filter, robots
// check, rate-limited HTTP fetch, and (on a 200 response) title/link
// extraction. filter is expected to be built once per crawl config and reused
// across calls, matching the "compiled at config load, not per URL" rule.
//
// An HTTP-level failure (4xx/5xx, oversized body) is never returned as an
// error: it is recorded on the returned Page's ErrorMessage, with no
// discovered URLs. Only a pre-fetch rejection (filter, robots) or an
// infrastructure failure (robots.txt fetch error) returns a non-nil error.
func (c *Crawler) Fetch(
	ctx context.Context,
	target url.URL,
	depth int,
	parent *string,
	filter *urlfilter.Filter,
) (domain.Page, []string, failure.ClassifiedError) {
	if filter != nil && !filter.ShouldCrawl(target.String()) {
		return domain.Page{}, nil, newFilterError()
	}

	normalized := urlutil.Canonicalize(target)
	host := normalized.Host

	if c.respectRobotsTxt && c.robot != nil {
		decision, err := c.robot.Decide(target)
		if err != nil {
			if classified, ok := err.(failure.ClassifiedError); ok {
				return domain.Page{}, nil, classified
			}
			return domain.Page{}, nil, newInfraError(err)
		}
		if !decision.Allowed {
			return domain.Page{}, nil, newRobotsError()
		}
		if decision.CrawlDelay > 0 && c.rateLimiter != nil {
			c.rateLimiter.SetCrawlDelay(host, decision.CrawlDelay)
		}
	}

	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return domain.Page{}, nil, newInfraError(ctx.Err())
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx, host); err != nil {
			return domain.Page{}, nil, newInfraError(err)
		}
	}

	fetchParam := htmlfetch.NewFetchParam(target, c.userAgent)
	result, fetchErr := c.fetcher.Fetch(ctx, depth, fetchParam, c.retryParam)
	if fetchErr != nil {
		page := domain.NewPageWithError("", target.String(), normalized.String(), depth, parent, fetchErr.Error())
		return page, nil, nil
	}

	page := domain.NewPage("", target.String(), normalized.String(), result.Code(), result.Headers(), depth, parent)
	page.RawHTML = result.Body()
	page.AddMetadata("content_length", strconv.Itoa(len(result.Body())))
	page.AddMetadata("content_type", result.Headers()["Content-Type"])

	if hash, err := hashutil.HashBytes(result.Body(), hashutil.HashAlgoMD5); err == nil {
		page.SetContentHash(hash)
	}

	var discovered []string
	if result.Code() == 200 {
		parseResult, parseErr := c.parser.Parse(normalized, result.Body())
		if parseErr == nil {
			if parseResult.Title != "" {
				page.SetTitle(parseResult.Title)
			}
			discovered = filterHTTPLinks(parseResult.DiscoveredLinks)
		}
	}

	return page, discovered, nil
}

// filterHTTPLinks keeps only http/https links and drops anything else a page
// might link to (mailto:, javascript:, tel:, ...).
func filterHTTPLinks(links []string) []string {
	var kept []string
	for _, link := range links {
		parsed, err := url.Parse(link)
		if err != nil {
			continue
		}
		if parsed.Scheme == "http" || parsed.Scheme == "https" {
			kept = append(kept, link)
		}
	}
	return kept
}
