package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens a connection pool against databaseURL. The returned
// *pgxpool.Pool satisfies Querier and is what production callers pass to
// NewConfigStore/NewJobStore/NewPageStore; tests pass a fake instead.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, databaseURL)
}
