package urlfilter

import "regexp"

/*
Responsibilities

- Hold a Config's ordered include/exclude regex lists, compiled once
- Decide whether a discovered URL is in scope for a crawl

Regex compilation happens when the Filter is built, not per URL: a
malformed pattern is classified at that point and never re-evaluated
during the crawl.
*/

// Filter applies a ScraperConfig's include/exclude pattern lists to
// discovered URLs. An empty include list admits everything; a non-empty
// include list requires at least one match. A non-empty exclude list
// rejects on any match.
type Filter struct {
	includes []compiledPattern
	excludes []compiledPattern
}

type compiledPattern struct {
	re *regexp.Regexp
}

// New compiles the given include/exclude pattern strings. A pattern that
// fails to compile is still recorded: as an always-reject entry when it
// came from includes (fail closed), or dropped entirely when it came from
// excludes (fail open, i.e. the malformed rule is simply skipped).
func New(includePatterns, excludePatterns []string) *Filter {
	f := &Filter{}

	for _, pattern := range includePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			f.includes = append(f.includes, compiledPattern{re: neverMatch()})
			continue
		}
		f.includes = append(f.includes, compiledPattern{re: re})
	}

	for _, pattern := range excludePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		f.excludes = append(f.excludes, compiledPattern{re: re})
	}

	return f
}

func neverMatch() *regexp.Regexp {
	return regexp.MustCompile(`$^`)
}

// ShouldCrawl reports whether url is in scope: it must match at least one
// include pattern (if any are configured) and must match none of the
// exclude patterns.
func (f *Filter) ShouldCrawl(url string) bool {
	if len(f.includes) > 0 {
		matched := false
		for _, p := range f.includes {
			if p.re.MatchString(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, p := range f.excludes {
		if p.re.MatchString(url) {
			return false
		}
	}

	return true
}
