package mdconvert_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpc "google.golang.org/grpc"

	"github.com/rohmanhakim/crawlservice/internal/mdconvert"
	"github.com/rohmanhakim/crawlservice/internal/mdconvert/mdpb"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

type fakeMarkdownClient struct {
	resp *mdpb.ConversionResponse
	err  error
	sent *mdpb.ConversionRequest
}

func (f *fakeMarkdownClient) ConvertHtmlToMarkdown(ctx context.Context, in *mdpb.ConversionRequest, opts ...grpc.CallOption) (*mdpb.ConversionResponse, error) {
	f.sent = in
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestGRPCConverter_Convert_SendsRawHTMLAndReturnsMarkdown(t *testing.T) {
	fake := &fakeMarkdownClient{resp: &mdpb.ConversionResponse{
		MarkdownContent: "# Hi",
		ExtractedLinks:  []string{"/docs/next", "#section"},
	}}
	converter := mdconvert.NewGRPCConverter(fake, nil)
	rawHTML := []byte("<html><body><article><h1>Hi</h1></article></body></html>")

	result, err := converter.Convert(context.Background(), rawHTML, "https://example.com/", map[string]string{"job_id": "job-1"})

	require.Nil(t, err)
	assert.Equal(t, "# Hi", string(result.GetMarkdownContent()))
	require.Len(t, result.GetLinkRefs(), 2)
	assert.Equal(t, mdconvert.KindNavigation, result.GetLinkRefs()[0].GetKind())
	assert.Equal(t, mdconvert.KindAnchor, result.GetLinkRefs()[1].GetKind())
	assert.Equal(t, string(rawHTML), fake.sent.HtmlContent)
	assert.Equal(t, "https://example.com/", fake.sent.Url)
	assert.Equal(t, "job-1", fake.sent.Metadata["job_id"])
}

func TestGRPCConverter_Convert_ServiceErrorIsRetryable(t *testing.T) {
	fake := &fakeMarkdownClient{err: assertAnError{}}
	converter := mdconvert.NewGRPCConverter(fake, nil)
	rawHTML := []byte("<html><body><article><h1>Hi</h1></article></body></html>")

	_, err := converter.Convert(context.Background(), rawHTML, "https://example.com/", nil)

	require.NotNil(t, err)
	assert.Equal(t, failure.SeverityRecoverable, err.Severity())
}

func TestGRPCConverter_Convert_EmptyHTMLIsRejected(t *testing.T) {
	fake := &fakeMarkdownClient{resp: &mdpb.ConversionResponse{}}
	converter := mdconvert.NewGRPCConverter(fake, nil)

	_, err := converter.Convert(context.Background(), nil, "https://example.com/", nil)

	require.NotNil(t, err)
	assert.Equal(t, failure.SeverityFatal, err.Severity())
}

type assertAnError struct{}

func (assertAnError) Error() string { return "unavailable" }
