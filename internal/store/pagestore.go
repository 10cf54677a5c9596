package store

import (
	"context"
	"encoding/json"

	"github.com/rohmanhakim/crawlservice/internal/domain"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

/*
Responsibilities

- Persist one row per fetched URL, win or fail
- Enforce job-scoped URL uniqueness (job_id, normalized_url) so a page the
  frontier re-discovers through a second path never double-inserts
- Offer no lookup by that pair: the worker keeps its visited set in memory
*/

type PageStore struct {
	db Querier
}

func NewPageStore(db Querier) PageStore {
	return PageStore{db: db}
}

// Save upserts a page by (job_id, normalized_url): a retry that re-crawls
// the same URL replaces the earlier record rather than colliding on the
// unique index.
func (s *PageStore) Save(ctx context.Context, page domain.Page) failure.ClassifiedError {
	headers, err := json.Marshal(page.HTTPHeaders)
	if err != nil {
		return newConnectionError(err.Error())
	}
	metadata, err := json.Marshal(page.Metadata)
	if err != nil {
		return newConnectionError(err.Error())
	}

	_, execErr := s.db.Exec(ctx, `
		INSERT INTO pages (
			id, job_id, url, normalized_url, content_hash, http_status, http_headers,
			crawled_at, html_storage_path, markdown_storage_path, title, metadata,
			error_message, depth, parent_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (job_id, normalized_url) DO UPDATE SET
			content_hash = EXCLUDED.content_hash,
			http_status = EXCLUDED.http_status,
			http_headers = EXCLUDED.http_headers,
			crawled_at = EXCLUDED.crawled_at,
			html_storage_path = EXCLUDED.html_storage_path,
			markdown_storage_path = EXCLUDED.markdown_storage_path,
			title = EXCLUDED.title,
			metadata = EXCLUDED.metadata,
			error_message = EXCLUDED.error_message,
			depth = EXCLUDED.depth,
			parent_url = EXCLUDED.parent_url
	`,
		page.ID, page.JobID, page.URL, page.NormalizedURL, page.ContentHash, page.HTTPStatus,
		headers, page.CrawledAt, page.HTMLStoragePath, page.MarkdownStoragePath, page.Title,
		metadata, page.ErrorMessage, page.Depth, page.ParentURL,
	)
	if execErr != nil {
		return newConnectionError(execErr.Error())
	}
	return nil
}

// ListByJob returns every page recorded for a job, oldest first.
func (s *PageStore) ListByJob(ctx context.Context, jobID string) ([]domain.Page, failure.ClassifiedError) {
	rows, err := s.db.Query(ctx, `
		SELECT id, job_id, url, normalized_url, content_hash, http_status, http_headers,
			crawled_at, html_storage_path, markdown_storage_path, title, metadata,
			error_message, depth, parent_url
		FROM pages WHERE job_id = $1 ORDER BY crawled_at ASC
	`, jobID)
	if err != nil {
		return nil, newConnectionError(err.Error())
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		page, scanErr := scanPage(rows)
		if scanErr != nil {
			return nil, newConnectionError(scanErr.Error())
		}
		pages = append(pages, page)
	}
	if rows.Err() != nil {
		return nil, newConnectionError(rows.Err().Error())
	}
	return pages, nil
}

func scanPage(row rowScanner) (domain.Page, error) {
	var page domain.Page
	var headers, metadata []byte

	err := row.Scan(
		&page.ID, &page.JobID, &page.URL, &page.NormalizedURL, &page.ContentHash,
		&page.HTTPStatus, &headers, &page.CrawledAt, &page.HTMLStoragePath,
		&page.MarkdownStoragePath, &page.Title, &metadata, &page.ErrorMessage,
		&page.Depth, &page.ParentURL,
	)
	if err != nil {
		return domain.Page{}, err
	}

	if err := json.Unmarshal(headers, &page.HTTPHeaders); err != nil {
		return domain.Page{}, err
	}
	if err := json.Unmarshal(metadata, &page.Metadata); err != nil {
		return domain.Page{}, err
	}
	return page, nil
}
