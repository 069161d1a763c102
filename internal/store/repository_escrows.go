package store

import (
	"context"
	"fmt"

	"pulse-ledger/internal/ledger"
)

func (s *Store) GetEscrow(ctx context.Context, key ledger.EscrowKey) (ledger.Escrow, error) {
	row := s.Pool.QueryRow(ctx, `SELECT agent_owner, agent_id, owner, balance::text, total_deposited::text,
  total_withdrawn::text, total_spent::text, created_at, last_activity, version
FROM escrows WHERE agent_owner = $1 AND agent_id = $2 AND owner = $3`,
		key.Agent.Owner, key.Agent.AgentID, key.Owner)
	var (
		e       ledger.Escrow
		version int64
	)
	err := row.Scan(&e.Agent.Owner, &e.Agent.AgentID, &e.Owner, scanU64(&e.Balance), scanU64(&e.TotalDeposited),
		scanU64(&e.TotalWithdrawn), scanU64(&e.TotalSpent), &e.CreatedAt, &e.LastActivity, &version)
	if err != nil {
		return ledger.Escrow{}, mapNotFound(err)
	}
	e.Version = uint64(version)
	return e, nil
}

func insertEscrow(ctx context.Context, q dbtx, e ledger.Escrow) error {
	tag, err := q.Exec(ctx, `INSERT INTO escrows (agent_owner, agent_id, owner, balance, total_deposited,
  total_withdrawn, total_spent, created_at, last_activity, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
ON CONFLICT DO NOTHING`,
		e.Agent.Owner, e.Agent.AgentID, e.Owner, numericParam(e.Balance), numericParam(e.TotalDeposited),
		numericParam(e.TotalWithdrawn), numericParam(e.TotalSpent),
		timestamptzParam(e.CreatedAt), timestamptzParam(e.LastActivity))
	if err := expectOne(tag, err, ErrAlreadyExists); err != nil {
		return fmt.Errorf("insert %s: %w", e.Key(), err)
	}
	return nil
}

func updateEscrow(ctx context.Context, q dbtx, e ledger.Escrow) error {
	tag, err := q.Exec(ctx, `UPDATE escrows SET balance = $4, total_deposited = $5, total_withdrawn = $6,
  total_spent = $7, last_activity = $8, version = version + 1
WHERE agent_owner = $1 AND agent_id = $2 AND owner = $3 AND version = $9`,
		e.Agent.Owner, e.Agent.AgentID, e.Owner, numericParam(e.Balance), numericParam(e.TotalDeposited),
		numericParam(e.TotalWithdrawn), numericParam(e.TotalSpent), timestamptzParam(e.LastActivity),
		int64(e.Version))
	if err := expectOne(tag, err, ErrConflict); err != nil {
		return fmt.Errorf("update %s: %w", e.Key(), err)
	}
	return nil
}
