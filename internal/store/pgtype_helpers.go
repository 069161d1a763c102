package store

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// numericParam encodes v for a NUMERIC(20,0) column. int8 would lose the
// top half of the unsigned range.
func numericParam(v uint64) pgtype.Numeric {
	return pgtype.Numeric{Int: new(big.Int).SetUint64(v), Valid: true}
}

// u64 scans a NUMERIC column selected as ::text.
type u64 struct{ dst *uint64 }

func (u *u64) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*u.dst = 0
		return nil
	default:
		return fmt.Errorf("scan u64: unsupported type %T", src)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("scan u64: %w", err)
	}
	*u.dst = n
	return nil
}

func scanU64(dst *uint64) *u64 {
	return &u64{dst: dst}
}

func timeParam(v *time.Time) pgtype.Timestamptz {
	if v == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *v, Valid: true}
}

func timestamptzParam(v time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: v, Valid: true}
}
