package mdconvert

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rohmanhakim/crawlservice/internal/mdconvert/mdpb"
	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

/*
Responsibilities
- Hand the fetched page's raw HTML to the out-of-process markdown conversion
  service over gRPC and translate its response back into a ConversionResult
- Keep the conversion ruleset upgradeable independently of this binary: this
  package owns none of the conversion logic, only the wire contract

Conversion Rules (owned by the remote service, not this client)
- Headings map directly (h1-h6 to # - ######)
- Code blocks preserved verbatim
- Tables converted structurally (GFM)
- Links and images preserved as-is (no resolution)
- DOM order preserved
*/

// ConvertRule defines the interface for converting a page's raw HTML to Markdown.
type ConvertRule interface {
	Convert(ctx context.Context, rawHTML []byte, pageURL string, requestMetadata map[string]string) (ConversionResult, failure.ClassifiedError)
}

var _ ConvertRule = (*GRPCConverter)(nil)

type GRPCConverter struct {
	client       mdpb.MarkdownConverterClient
	metadataSink metadata.MetadataSink
}

// DialGRPCConverter opens an insecure gRPC channel to the markdown
// conversion service at addr, matching the plaintext Channel the original
// client established.
func DialGRPCConverter(addr string, metadataSink metadata.MetadataSink) (*GRPCConverter, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &GRPCConverter{client: mdpb.NewMarkdownConverterClient(conn), metadataSink: metadataSink}, nil
}

// NewGRPCConverter wraps an already-constructed client, the seam tests use
// to substitute a fake without dialing a real service.
func NewGRPCConverter(client mdpb.MarkdownConverterClient, metadataSink metadata.MetadataSink) GRPCConverter {
	return GRPCConverter{client: client, metadataSink: metadataSink}
}

func (c *GRPCConverter) Convert(ctx context.Context, rawHTML []byte, pageURL string, requestMetadata map[string]string) (ConversionResult, failure.ClassifiedError) {
	result, err := c.convert(ctx, rawHTML, pageURL, requestMetadata)
	if err != nil {
		c.recordError(pageURL, err)
		return ConversionResult{}, err
	}
	return result, nil
}

func (c *GRPCConverter) convert(ctx context.Context, rawHTML []byte, pageURL string, requestMetadata map[string]string) (ConversionResult, *ConversionError) {
	if len(rawHTML) == 0 {
		return ConversionResult{}, &ConversionError{
			Message: "cannot convert empty HTML", Retryable: false, Cause: ErrCauseConversionFailure,
		}
	}

	resp, err := c.client.ConvertHtmlToMarkdown(ctx, &mdpb.ConversionRequest{
		HtmlContent: string(rawHTML),
		Url:         pageURL,
		Metadata:    requestMetadata,
	})
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message: err.Error(), Retryable: true, Cause: ErrCauseServiceUnavailable,
		}
	}

	linkRefs := make([]LinkRef, 0, len(resp.ExtractedLinks))
	for _, link := range resp.ExtractedLinks {
		linkRefs = append(linkRefs, toLinkRef(link))
	}

	return NewConversionResult([]byte(resp.MarkdownContent), linkRefs), nil
}

func (c *GRPCConverter) recordError(pageURL string, err *ConversionError) {
	if c.metadataSink == nil {
		return
	}
	c.metadataSink.RecordError(
		time.Now(),
		"mdconvert",
		"GRPCConverter.Convert",
		mapConversionErrorToMetadataCause(*err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, pageURL),
			metadata.NewAttr(metadata.AttrField, string(err.Cause)),
		},
	)
}

// toLinkRef classifies a link the remote service extracted. The wire
// contract reports extracted_links as flat strings with no tag
// information, so image references can't be told apart here; an in-page
// anchor is detected by its leading '#', everything else is navigation.
func toLinkRef(raw string) LinkRef {
	if strings.HasPrefix(raw, "#") {
		return NewLinkRef(raw, KindAnchor)
	}
	return NewLinkRef(raw, KindNavigation)
}
