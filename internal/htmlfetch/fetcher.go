package htmlfetch

import (
	"context"
	"net/http"

	"github.com/rohmanhakim/crawlservice/pkg/failure"
	"github.com/rohmanhakim/crawlservice/pkg/retry"
)

type Fetcher interface {
	Init(httpClient *http.Client)
	Fetch(
		ctx context.Context,
		crawlDepth int,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
