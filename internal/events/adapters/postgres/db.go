package postgres

import (
	"context"
	"database/sql"
)

// DB is the write side of the event store.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
}
