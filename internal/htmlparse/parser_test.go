package htmlparse_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/rohmanhakim/crawlservice/internal/htmlparse"
	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSink struct {
	errorEvents int
}

func (s *stubSink) RecordFetch(string, int, time.Duration, string, int, int) {}
func (s *stubSink) RecordAssetFetch(string, int, time.Duration, int)        {}
func (s *stubSink) RecordError(time.Time, string, string, metadata.ErrorCause, string, []metadata.Attribute) {
	s.errorEvents++
}
func (s *stubSink) RecordArtifact(metadata.ArtifactKind, string, []metadata.Attribute) {}

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestParse_ExtractsTitle(t *testing.T) {
	p := htmlparse.NewParser(&stubSink{})
	base := mustParseURL(t, "https://docs.example.com/guide/")

	result, err := p.Parse(base, []byte(`<html><head><title>  Getting Started  </title></head><body></body></html>`))
	require.Nil(t, err)
	assert.Equal(t, "Getting Started", result.Title)
}

func TestParse_ResolvesRelativeLinks(t *testing.T) {
	p := htmlparse.NewParser(&stubSink{})
	base := mustParseURL(t, "https://docs.example.com/guide/intro")

	html := `<html><body>
		<a href="./setup">setup</a>
		<a href="/reference">reference</a>
		<a href="https://other.example.com/page">external</a>
	</body></html>`

	result, err := p.Parse(base, []byte(html))
	require.Nil(t, err)
	assert.ElementsMatch(t, []string{
		"https://docs.example.com/guide/setup",
		"https://docs.example.com/reference",
		"https://other.example.com/page",
	}, result.DiscoveredLinks)
}

func TestParse_DropsFragmentOnlyLinks(t *testing.T) {
	p := htmlparse.NewParser(&stubSink{})
	base := mustParseURL(t, "https://docs.example.com/guide")

	result, err := p.Parse(base, []byte(`<html><body><a href="#section-2">jump</a></body></html>`))
	require.Nil(t, err)
	assert.Empty(t, result.DiscoveredLinks)
}

func TestParse_StripsFragmentFromResolvedLink(t *testing.T) {
	p := htmlparse.NewParser(&stubSink{})
	base := mustParseURL(t, "https://docs.example.com/guide")

	result, err := p.Parse(base, []byte(`<html><body><a href="/other#details">link</a></body></html>`))
	require.Nil(t, err)
	assert.Equal(t, []string{"https://docs.example.com/other"}, result.DiscoveredLinks)
}

func TestParse_DeduplicatesLinks(t *testing.T) {
	p := htmlparse.NewParser(&stubSink{})
	base := mustParseURL(t, "https://docs.example.com/guide")

	html := `<html><body>
		<a href="/a">one</a>
		<a href="/a">one again</a>
	</body></html>`

	result, err := p.Parse(base, []byte(html))
	require.Nil(t, err)
	assert.Equal(t, []string{"https://docs.example.com/a"}, result.DiscoveredLinks)
}

func TestParse_NoTitleYieldsEmptyString(t *testing.T) {
	p := htmlparse.NewParser(&stubSink{})
	base := mustParseURL(t, "https://docs.example.com/guide")

	result, err := p.Parse(base, []byte(`<html><body><p>no title here</p></body></html>`))
	require.Nil(t, err)
	assert.Equal(t, "", result.Title)
}
