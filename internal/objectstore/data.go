package objectstore

// Kind distinguishes the two artifacts a crawled page can produce.
type Kind string

const (
	KindHTML     Kind = "html"
	KindMarkdown Kind = "md"
)

type WriteResult struct {
	urlHash string // identity (object key stem, md5 of the canonical URL)
	bucket  string
	key     string
}

func NewWriteResult(urlHash, bucket, key string) WriteResult {
	return WriteResult{urlHash: urlHash, bucket: bucket, key: key}
}

func (w *WriteResult) URLHash() string { return w.urlHash }
func (w *WriteResult) Bucket() string  { return w.bucket }
func (w *WriteResult) Key() string     { return w.key }
