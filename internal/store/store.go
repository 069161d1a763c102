package store

import (
	"context"
	"time"

	"pulse-ledger/internal/ledger"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = ledger.ErrNotFound
	ErrConflict      = ledger.ErrConflict
	ErrAlreadyExists = ledger.ErrAlreadyExists
)

// Store is the Postgres-backed ledger store.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}
