package crawler

// Params bundles the per-config knobs a Crawler needs to carry out a single
// fetch: the crawl policy toggles a ScraperConfig pins down.
type Params struct {
	RespectRobotsTxt bool
	UserAgent        string
}
