package store

import (
	"context"
	"fmt"

	"pulse-ledger/internal/ledger"
)

const agentColumns = `owner, agent_id, name, is_active, auto_purchase_enabled, auto_purchase_threshold,
  max_budget_per_ticket::text, total_budget::text, spent_budget::text, max_tickets_per_event,
  tickets_purchased::text, created_at, last_active, version`

func (s *Store) GetAgent(ctx context.Context, key ledger.AgentKey) (ledger.Agent, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE owner = $1 AND agent_id = $2`,
		key.Owner, key.AgentID)
	var (
		a         ledger.Agent
		threshold int32
		limit     int64
		version   int64
	)
	err := row.Scan(&a.Owner, &a.AgentID, &a.Name, &a.IsActive, &a.AutoPurchaseEnabled, &threshold,
		scanU64(&a.MaxBudgetPerTicket), scanU64(&a.TotalBudget), scanU64(&a.SpentBudget), &limit,
		scanU64(&a.TicketsPurchased), &a.CreatedAt, &a.LastActive, &version)
	if err != nil {
		return ledger.Agent{}, mapNotFound(err)
	}
	a.AutoPurchaseThreshold = uint16(threshold)
	a.MaxTicketsPerEvent = uint32(limit)
	a.Version = uint64(version)
	return a, nil
}

func insertAgent(ctx context.Context, q dbtx, a ledger.Agent) error {
	tag, err := q.Exec(ctx, `INSERT INTO agents (owner, agent_id, name, is_active, auto_purchase_enabled,
  auto_purchase_threshold, max_budget_per_ticket, total_budget, spent_budget, max_tickets_per_event,
  tickets_purchased, created_at, last_active, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1)
ON CONFLICT DO NOTHING`,
		a.Owner, a.AgentID, a.Name, a.IsActive, a.AutoPurchaseEnabled, int32(a.AutoPurchaseThreshold),
		numericParam(a.MaxBudgetPerTicket), numericParam(a.TotalBudget), numericParam(a.SpentBudget),
		int64(a.MaxTicketsPerEvent), numericParam(a.TicketsPurchased),
		timestamptzParam(a.CreatedAt), timestamptzParam(a.LastActive))
	if err := expectOne(tag, err, ErrAlreadyExists); err != nil {
		return fmt.Errorf("insert %s: %w", a.Key(), err)
	}
	return nil
}

func updateAgent(ctx context.Context, q dbtx, a ledger.Agent) error {
	tag, err := q.Exec(ctx, `UPDATE agents SET name = $3, is_active = $4, auto_purchase_enabled = $5,
  auto_purchase_threshold = $6, max_budget_per_ticket = $7, total_budget = $8, spent_budget = $9,
  max_tickets_per_event = $10, tickets_purchased = $11, last_active = $12, version = version + 1
WHERE owner = $1 AND agent_id = $2 AND version = $13`,
		a.Owner, a.AgentID, a.Name, a.IsActive, a.AutoPurchaseEnabled, int32(a.AutoPurchaseThreshold),
		numericParam(a.MaxBudgetPerTicket), numericParam(a.TotalBudget), numericParam(a.SpentBudget),
		int64(a.MaxTicketsPerEvent), numericParam(a.TicketsPurchased), timestamptzParam(a.LastActive),
		int64(a.Version))
	if err := expectOne(tag, err, ErrConflict); err != nil {
		return fmt.Errorf("update %s: %w", a.Key(), err)
	}
	return nil
}
