package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbtx is satisfied by both the pool and an open transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// expectOne turns a zero-row write into ErrConflict for versioned updates or
// ErrAlreadyExists for inserts.
func expectOne(tag pgconn.CommandTag, err error, zero error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return zero
	}
	return nil
}
