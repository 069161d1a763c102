package store

import (
	"context"
	"fmt"

	"pulse-ledger/internal/ledger"
)

func (s *Store) ListEntries(ctx context.Context, f EntryFilter, limit, offset int) ([]ledger.Entry, error) {
	limit, offset = normalizeLimit(limit, offset)
	rows, err := s.Pool.Query(ctx, `SELECT id, account, type, direction, amount::text, ref_type, ref_id, created_at
FROM ledger_entries
WHERE ($1 = '' OR account = $1)
  AND ($2 = '' OR type = $2)
  AND ($3 = '' OR ref_type = $3)
  AND ($4 = '' OR ref_id = $4)
  AND ($5::timestamptz IS NULL OR created_at >= $5)
  AND ($6::timestamptz IS NULL OR created_at <= $6)
ORDER BY created_at DESC, id DESC
LIMIT $7 OFFSET $8`,
		f.Account, f.Type, f.RefType, f.RefID, timeParam(f.From), timeParam(f.To), int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Entry, 0, limit)
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.ID, &e.Account, &e.Type, &e.Direction, scanU64(&e.Amount), &e.RefType, &e.RefID,
			&e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertEntry(ctx context.Context, q dbtx, e ledger.Entry) error {
	tag, err := q.Exec(ctx, `INSERT INTO ledger_entries (id, account, type, direction, amount, ref_type, ref_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT DO NOTHING`,
		e.ID, e.Account, e.Type, e.Direction, numericParam(e.Amount), e.RefType, e.RefID,
		timestamptzParam(e.CreatedAt))
	if err := expectOne(tag, err, ErrAlreadyExists); err != nil {
		return fmt.Errorf("insert entry %s: %w", e.ID, err)
	}
	return nil
}
