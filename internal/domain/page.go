package domain

import "time"

// Page is one fetched URL belonging to a Job. Either it carries an
// ErrorMessage and no storage paths, or it has no ErrorMessage and (once
// converted) both storage paths set.
type Page struct {
	ID                  string
	JobID               string
	URL                 string
	NormalizedURL       string
	ContentHash         *string
	HTTPStatus          *int
	HTTPHeaders         map[string]string
	CrawledAt           time.Time
	HTMLStoragePath     *string
	MarkdownStoragePath *string
	Title               *string
	Metadata            map[string]string
	ErrorMessage        *string
	Depth               int
	ParentURL           *string

	// RawHTML is the fetched body, carried only for the duration of a single
	// crawl-worker pipeline run. It is never persisted on the page record.
	RawHTML []byte
}

// NewPage builds a successfully-fetched Page awaiting conversion and storage.
func NewPage(jobID, url, normalizedURL string, httpStatus int, headers map[string]string, depth int, parentURL *string) Page {
	return Page{
		ID:            NewID(),
		JobID:         jobID,
		URL:           url,
		NormalizedURL: normalizedURL,
		HTTPStatus:    &httpStatus,
		HTTPHeaders:   headers,
		CrawledAt:     time.Now().UTC(),
		Metadata:      map[string]string{},
		Depth:         depth,
		ParentURL:     parentURL,
	}
}

// NewPageWithError builds a Page record for a URL that failed to crawl. It
// never carries storage paths.
func NewPageWithError(jobID, url, normalizedURL string, depth int, parentURL *string, errMsg string) Page {
	return Page{
		ID:            NewID(),
		JobID:         jobID,
		URL:           url,
		NormalizedURL: normalizedURL,
		CrawledAt:     time.Now().UTC(),
		Metadata:      map[string]string{},
		Depth:         depth,
		ParentURL:     parentURL,
		ErrorMessage:  &errMsg,
	}
}

func (p *Page) SetHTMLStoragePath(path string) {
	p.HTMLStoragePath = &path
}

func (p *Page) SetMarkdownStoragePath(path string) {
	p.MarkdownStoragePath = &path
}

func (p *Page) SetTitle(title string) {
	p.Title = &title
}

func (p *Page) SetContentHash(hash string) {
	p.ContentHash = &hash
}

func (p *Page) AddMetadata(key, value string) {
	if p.Metadata == nil {
		p.Metadata = map[string]string{}
	}
	p.Metadata[key] = value
}

// Failed reports whether this page record represents a crawl failure.
func (p *Page) Failed() bool {
	return p.ErrorMessage != nil
}
