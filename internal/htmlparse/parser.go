package htmlparse

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

/*
Responsibilities

- Parse fetched HTML bytes into a DOM
- Extract the page title
- Extract every <a href> link, resolved against the page's base URL

No content scoring, chrome removal, or sanitization happens here: that is
out of scope for this package's contract.
*/

type Parser struct {
	metadataSink metadata.MetadataSink
}

func NewParser(metadataSink metadata.MetadataSink) Parser {
	return Parser{metadataSink: metadataSink}
}

func (p *Parser) Parse(baseURL url.URL, htmlBody []byte) (ParseResult, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		parseErr := &ParseError{
			Message:   "failed to parse html: " + err.Error(),
			Retryable: false,
			Cause:     ErrCauseMalformedHTML,
		}
		if p.metadataSink != nil {
			p.metadataSink.RecordError(
				time.Now(),
				"htmlparse",
				"Parser.Parse",
				mapParseErrorToMetadataCause(parseErr),
				parseErr.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, baseURL.String()),
				},
			)
		}
		return ParseResult{}, parseErr
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	links := extractLinks(doc, baseURL)

	return ParseResult{Title: title, DiscoveredLinks: links}, nil
}

// extractLinks walks every <a href> in document order, resolves each href
// against base, and returns the absolute URLs. Hrefs that fail to parse or
// resolve are skipped; fragment-only links ("#section") are dropped since
// they never identify a distinct crawlable page.
func extractLinks(doc *goquery.Document, base url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""
		absolute := resolved.String()

		if seen[absolute] {
			return
		}
		seen[absolute] = true
		links = append(links, absolute)
	})

	return links
}
