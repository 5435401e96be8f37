package postgres

import (
	"context"
	"database/sql"
)

// executor lets a repository bind to either *sql.DB or *sql.Tx, the same
// duck-typed seam the reference postgres package uses to share repository
// code between top-level and in-transaction use.
type executor interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
