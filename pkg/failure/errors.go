package failure

// Severity drives worker/job-level control flow: whether a failure aborts the
// enclosing job or is absorbed and the crawl continues.
type Severity int

const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// Kind classifies a failure by what kind of boundary it crossed, independent of
// Severity. It is used to pick an HTTP-shaped status when a failure surfaces
// through an external interface, and to group errors for observability.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidInput
	KindExternalService
	KindQueue
	KindStorage
	KindDatabase
	KindMarkdownService
	KindScraper
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindExternalService:
		return "external_service_error"
	case KindQueue:
		return "queue_error"
	case KindStorage:
		return "storage_error"
	case KindDatabase:
		return "database_error"
	case KindMarkdownService:
		return "markdown_service_error"
	case KindScraper:
		return "scraper_error"
	default:
		return "unknown"
	}
}

type ClassifiedError interface {
	error
	Severity() Severity
}

// Kinded is implemented by errors that also carry a Kind classification.
// Not every ClassifiedError needs one (e.g. the generic retry.RetryError), so
// this is a separate, optional interface rather than folded into ClassifiedError.
type Kinded interface {
	Kind() Kind
}
