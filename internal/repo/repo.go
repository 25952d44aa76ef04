// Package repo maps entities to persisted rows. Every repository works
// against a Querier so the same finders run on the bare connection or inside
// a store transaction.
package repo

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql satisfied by both *sql.DB and
// *sql.Tx. Repositories never open transactions themselves; callers that
// need atomicity pass a transaction in.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}
