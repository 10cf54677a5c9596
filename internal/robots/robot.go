package robots

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/internal/robots/cache"
)

/*
Responsibilities

- Fetch robots.txt per host
- Cache rules for crawl duration
- Enforce allow/disallow rules before enqueue

Robots checks occur before a URL enters the frontier.
*/

// CachedRobot decides whether a URL may be crawled according to its host's
// robots.txt, fetching and caching rules per host for the lifetime of a crawl.
// Decide resolves the robots.txt scheme from the target URL itself, so an
// https:// seed is never checked against a http:// robots.txt.
type CachedRobot struct {
	metadataSink metadata.MetadataSink
	fetcher      *RobotsFetcher
	userAgent    string
}

// NewCachedRobot creates a robot bound to a metadata sink. Init or
// InitWithCache must be called before Decide.
func NewCachedRobot(metadataSink metadata.MetadataSink) CachedRobot {
	return CachedRobot{metadataSink: metadataSink}
}

// Init wires the robot with an in-memory cache, sufficient for a single crawl run.
func (r *CachedRobot) Init(userAgent string) {
	r.InitWithCache(userAgent, cache.NewMemoryCache())
}

// InitWithCache wires the robot with a caller-supplied cache implementation.
func (r *CachedRobot) InitWithCache(userAgent string, c cache.Cache) {
	r.userAgent = userAgent
	r.fetcher = NewRobotsFetcher(r.metadataSink, userAgent, c)
}

// Decide fetches (or reuses the cached) robots.txt for target's host and
// determines whether target may be crawled under this robot's user agent.
// On fetch failure the decision is zero-valued and the error is returned;
// callers should treat this conservatively (do not crawl) rather than
// assume allow-all, since allow-all is only returned for an absent or empty
// robots.txt, not for a failed fetch.
func (r CachedRobot) Decide(target url.URL) (Decision, error) {
	if r.fetcher == nil {
		return Decision{}, &RobotsError{
			Message:   "robot not initialized: call Init or InitWithCache first",
			Retryable: false,
			Cause:     ErrCausePreFetchFailure,
		}
	}

	scheme := target.Scheme
	if scheme == "" {
		scheme = "https"
	}

	result, fetchErr := r.fetcher.Fetch(context.Background(), scheme, target.Host)
	if fetchErr != nil {
		if r.metadataSink != nil {
			r.metadataSink.RecordError(
				time.Now(),
				"robots",
				"fetch",
				mapRobotsErrorToMetadataCause(fetchErr),
				fetchErr.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrHost, target.Host),
					metadata.NewAttr(metadata.AttrURL, target.String()),
				},
			)
		}
		return Decision{}, fetchErr
	}

	rs := MapResponseToRuleSet(result.Response, r.userAgent, result.FetchedAt)
	return decideFromRuleSet(rs, target), nil
}

// decideFromRuleSet applies the standard robots.txt precedence: the
// longest matching pattern wins, and an allow/disallow tie favors allow.
func decideFromRuleSet(rs ruleSet, target url.URL) Decision {
	var crawlDelay time.Duration
	if rs.crawlDelay != nil {
		crawlDelay = *rs.crawlDelay
	}

	if !rs.hasGroups {
		return Decision{Url: target, Allowed: true, Reason: EmptyRuleSet, CrawlDelay: crawlDelay}
	}
	if !rs.matchedGroup {
		return Decision{Url: target, Allowed: true, Reason: UserAgentNotMatched, CrawlDelay: crawlDelay}
	}

	path := requestPath(target)

	bestAllowLen := -1
	for _, rule := range rs.allowRules {
		if matchesPattern(rule.prefix, path) && len(rule.prefix) > bestAllowLen {
			bestAllowLen = len(rule.prefix)
		}
	}

	bestDisallowLen := -1
	for _, rule := range rs.disallowRules {
		if matchesPattern(rule.prefix, path) && len(rule.prefix) > bestDisallowLen {
			bestDisallowLen = len(rule.prefix)
		}
	}

	if bestAllowLen == -1 && bestDisallowLen == -1 {
		return Decision{Url: target, Allowed: true, Reason: NoMatchingRules, CrawlDelay: crawlDelay}
	}
	if bestAllowLen >= bestDisallowLen {
		return Decision{Url: target, Allowed: true, Reason: AllowedByRobots, CrawlDelay: crawlDelay}
	}
	return Decision{Url: target, Allowed: false, Reason: DisallowedByRobots, CrawlDelay: crawlDelay}
}

func requestPath(target url.URL) string {
	path := target.Path
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	return path
}

// matchesPattern reports whether a robots.txt pattern matches path. "*"
// matches any run of characters; a trailing "$" anchors the match to the
// end of path instead of allowing it as a prefix.
func matchesPattern(pattern, path string) bool {
	re, err := regexp.Compile(patternToRegex(pattern))
	if err != nil {
		return false
	}
	return re.MatchString(path)
}

func patternToRegex(pattern string) string {
	endAnchored := strings.HasSuffix(pattern, "$")
	if endAnchored {
		pattern = strings.TrimSuffix(pattern, "$")
	}

	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pattern {
		if r == '*' {
			sb.WriteString(".*")
		} else {
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if endAnchored {
		sb.WriteString("$")
	}
	return sb.String()
}
