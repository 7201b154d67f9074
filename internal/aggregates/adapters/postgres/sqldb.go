package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// readOnlyRows closes the transaction that produced the rows.
type readOnlyRows struct {
	rows *sql.Rows
	tx   *sql.Tx
}

func (r *readOnlyRows) Next() bool {
	return r.rows.Next()
}

func (r *readOnlyRows) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

func (r *readOnlyRows) Err() error {
	return r.rows.Err()
}

func (r *readOnlyRows) Close() error {
	err := r.rows.Close()
	if rbErr := r.tx.Rollback(); err == nil && !errors.Is(rbErr, sql.ErrTxDone) {
		err = rbErr
	}
	return err
}

type sqlDB struct {
	db *sql.DB
}

// NewSQLDB adapts a *sql.DB (lib/pq) to DB. Every query runs inside its own
// read-only transaction, released when the rows are closed.
func NewSQLDB(db *sql.DB) DB {
	return &sqlDB{db: db}
}

func (s *sqlDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read-only tx: %w", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return &readOnlyRows{rows: rows, tx: tx}, nil
}
