package frontier

import "github.com/rohmanhakim/crawlservice/internal/config"

/*
Frontier Responsibilities
- Provide the generic containers a crawl frontier is built from:
  FIFOQueue[T], Stack[T] and Set[T]
- Knows nothing about:
	- fetching
	- extraction
	- markdown
	- storage

It is a data structure module, not a pipeline executor. Traversal order,
deduplication and depth limits are applied by its callers (internal/worker),
not by this package.
*/

// CrawlingPolicy carries no settings; NewCrawlingPolicy ignores cfg.
type CrawlingPolicy struct{}

func NewCrawlingPolicy(cfg config.Config) CrawlingPolicy {
	return CrawlingPolicy{}
}
