package store

import (
	"context"
	"fmt"

	"pulse-ledger/internal/ledger"
)

func (s *Store) ListTickets(ctx context.Context, f TicketFilter, limit, offset int) ([]ledger.Ticket, error) {
	limit, offset = normalizeLimit(limit, offset)
	rows, err := s.Pool.Query(ctx, `SELECT id, organizer, event_id, tier_id, agent_owner, agent_id, authority,
  price::text, organizer_amount::text, protocol_amount::text, treasury, purchased_at
FROM tickets
WHERE ($1 = '' OR agent_owner = $1)
  AND ($2 = '' OR agent_id = $2)
  AND ($3 = '' OR organizer = $3)
  AND ($4 = '' OR event_id = $4)
  AND ($5 = '' OR tier_id = $5)
  AND ($6::timestamptz IS NULL OR purchased_at >= $6)
  AND ($7::timestamptz IS NULL OR purchased_at <= $7)
ORDER BY purchased_at DESC, id DESC
LIMIT $8 OFFSET $9`,
		f.AgentOwner, f.AgentID, f.Organizer, f.EventID, f.TierID, timeParam(f.From), timeParam(f.To),
		int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Ticket, 0, limit)
	for rows.Next() {
		var t ledger.Ticket
		if err := rows.Scan(&t.ID, &t.Event.Organizer, &t.Event.EventID, &t.TierID, &t.Agent.Owner, &t.Agent.AgentID,
			&t.Authority, scanU64(&t.Price), scanU64(&t.OrganizerAmount), scanU64(&t.ProtocolAmount), &t.Treasury,
			&t.PurchasedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func insertTicket(ctx context.Context, q dbtx, t ledger.Ticket) error {
	tag, err := q.Exec(ctx, `INSERT INTO tickets (id, organizer, event_id, tier_id, agent_owner, agent_id, authority,
  price, organizer_amount, protocol_amount, treasury, purchased_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT DO NOTHING`,
		t.ID, t.Event.Organizer, t.Event.EventID, t.TierID, t.Agent.Owner, t.Agent.AgentID, t.Authority,
		numericParam(t.Price), numericParam(t.OrganizerAmount), numericParam(t.ProtocolAmount), t.Treasury,
		timestamptzParam(t.PurchasedAt))
	if err := expectOne(tag, err, ErrAlreadyExists); err != nil {
		return fmt.Errorf("insert ticket %s: %w", t.ID, err)
	}
	return nil
}
