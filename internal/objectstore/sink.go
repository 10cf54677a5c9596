package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
	"github.com/rohmanhakim/crawlservice/pkg/hashutil"
)

/*
Responsibilities
- Persist raw HTML and converted Markdown for a crawled page
- Derive a stable, collision-resistant object key from the page's
  canonical URL so reruns of the same job overwrite rather than duplicate
- Ensure the destination bucket exists before the first write

Output Characteristics
- Deterministic key: {job_id}/{md5_hex(canonical_url)}.{html,md}
- Idempotent writes (same URL always maps to the same key)
- Overwrite-safe reruns
*/

type Sink interface {
	Write(ctx context.Context, jobID, canonicalURL string, kind Kind, content []byte) (WriteResult, failure.ClassifiedError)
	Read(ctx context.Context, bucket, key string) ([]byte, failure.ClassifiedError)
}

type MinioSink struct {
	client       *minio.Client
	htmlBucket   string
	markdownBucket string
	metadataSink metadata.MetadataSink
}

func NewMinioSink(client *minio.Client, htmlBucket, markdownBucket string, metadataSink metadata.MetadataSink) MinioSink {
	return MinioSink{
		client:         client,
		htmlBucket:     htmlBucket,
		markdownBucket: markdownBucket,
		metadataSink:   metadataSink,
	}
}

// EnsureBuckets creates any bucket from the pair that does not already
// exist. Called once at startup, mirroring the original's bucket-exists
// check before it accepts its first upload.
func (s *MinioSink) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.htmlBucket, s.markdownBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("objectstore: check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("objectstore: create bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

func (s *MinioSink) Write(ctx context.Context, jobID, canonicalURL string, kind Kind, content []byte) (WriteResult, failure.ClassifiedError) {
	result, err := s.write(ctx, jobID, canonicalURL, kind, content)
	if err != nil {
		var storeErr *ObjectStoreError
		if asStoreErr, ok := err.(*ObjectStoreError); ok {
			storeErr = asStoreErr
		}
		if s.metadataSink != nil && storeErr != nil {
			s.metadataSink.RecordError(
				time.Now(),
				"objectstore",
				"MinioSink.Write",
				mapObjectStoreErrorToMetadataCause(storeErr),
				storeErr.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, canonicalURL),
					metadata.NewAttr(metadata.AttrJobID, jobID),
				},
			)
		}
		return WriteResult{}, err
	}
	if s.metadataSink != nil {
		s.metadataSink.RecordArtifact(
			artifactKindFor(kind),
			fmt.Sprintf("%s/%s", result.Bucket(), result.Key()),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, canonicalURL),
				metadata.NewAttr(metadata.AttrJobID, jobID),
				metadata.NewAttr(metadata.AttrField, result.URLHash()),
			},
		)
	}
	return result, nil
}

func (s *MinioSink) write(ctx context.Context, jobID, canonicalURL string, kind Kind, content []byte) (WriteResult, *ObjectStoreError) {
	urlHashFull, key, err := objectKeyFor(jobID, canonicalURL, kind)
	if err != nil {
		return WriteResult{}, &ObjectStoreError{
			Message: err.Error(), Retryable: false, Cause: ErrCauseHashComputationFailed,
		}
	}

	bucket, contentType := s.bucketAndContentTypeFor(kind)

	_, putErr := s.client.PutObject(ctx, bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if putErr != nil {
		return WriteResult{}, &ObjectStoreError{
			Message: putErr.Error(), Retryable: true, Cause: ErrCauseUploadFailed, Bucket: bucket, Key: key,
		}
	}

	return NewWriteResult(urlHashFull, bucket, key), nil
}

func (s *MinioSink) Read(ctx context.Context, bucket, key string) ([]byte, failure.ClassifiedError) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, &ObjectStoreError{Message: err.Error(), Retryable: true, Cause: ErrCauseDownloadFailed, Bucket: bucket, Key: key}
	}
	defer obj.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, &ObjectStoreError{Message: err.Error(), Retryable: true, Cause: ErrCauseDownloadFailed, Bucket: bucket, Key: key}
	}
	return buf.Bytes(), nil
}

func (s *MinioSink) bucketAndContentTypeFor(kind Kind) (bucket, contentType string) {
	if kind == KindMarkdown {
		return s.markdownBucket, "text/markdown"
	}
	return s.htmlBucket, "text/html"
}

func artifactKindFor(kind Kind) metadata.ArtifactKind {
	if kind == KindMarkdown {
		return metadata.ArtifactMarkdown
	}
	return metadata.ArtifactHTML
}

// objectKeyFor derives {job_id}/{md5_hex(canonical_url)}.{ext} from a job
// and the page's canonical URL. Split out from write so the deterministic
// key scheme can be tested without a MinIO server.
func objectKeyFor(jobID, canonicalURL string, kind Kind) (urlHash, key string, err error) {
	urlHash, err = hashutil.HashBytes([]byte(canonicalURL), hashutil.HashAlgoMD5)
	if err != nil {
		return "", "", err
	}
	return urlHash, fmt.Sprintf("%s/%s.%s", jobID, urlHash, string(kind)), nil
}
