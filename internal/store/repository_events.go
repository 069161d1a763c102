package store

import (
	"context"
	"fmt"

	"pulse-ledger/internal/ledger"
)

func (s *Store) GetEvent(ctx context.Context, key ledger.EventKey) (ledger.Event, error) {
	row := s.Pool.QueryRow(ctx, `SELECT organizer, event_id, organizer_fee_bps, total_tickets_sold::text,
  total_revenue::text, is_active, created_at, version
FROM events WHERE organizer = $1 AND event_id = $2`, key.Organizer, key.EventID)
	var (
		e       ledger.Event
		fee     int32
		version int64
	)
	err := row.Scan(&e.Organizer, &e.EventID, &fee, scanU64(&e.TotalTicketsSold), scanU64(&e.TotalRevenue),
		&e.IsActive, &e.CreatedAt, &version)
	if err != nil {
		return ledger.Event{}, mapNotFound(err)
	}
	e.OrganizerFeeBps = uint16(fee)
	e.Version = uint64(version)
	return e, nil
}

func (s *Store) GetTier(ctx context.Context, key ledger.TierKey) (ledger.Tier, error) {
	row := s.Pool.QueryRow(ctx, `SELECT organizer, event_id, tier_id, price::text, max_supply::text,
  current_supply::text, is_active, version
FROM tiers WHERE organizer = $1 AND event_id = $2 AND tier_id = $3`,
		key.Event.Organizer, key.Event.EventID, key.TierID)
	var (
		t       ledger.Tier
		version int64
	)
	err := row.Scan(&t.Event.Organizer, &t.Event.EventID, &t.TierID, scanU64(&t.Price), scanU64(&t.MaxSupply),
		scanU64(&t.CurrentSupply), &t.IsActive, &version)
	if err != nil {
		return ledger.Tier{}, mapNotFound(err)
	}
	t.Version = uint64(version)
	return t, nil
}

func insertEvent(ctx context.Context, q dbtx, e ledger.Event) error {
	tag, err := q.Exec(ctx, `INSERT INTO events (organizer, event_id, organizer_fee_bps, total_tickets_sold,
  total_revenue, is_active, created_at, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
ON CONFLICT DO NOTHING`,
		e.Organizer, e.EventID, int32(e.OrganizerFeeBps), numericParam(e.TotalTicketsSold),
		numericParam(e.TotalRevenue), e.IsActive, timestamptzParam(e.CreatedAt))
	if err := expectOne(tag, err, ErrAlreadyExists); err != nil {
		return fmt.Errorf("insert %s: %w", e.Key(), err)
	}
	return nil
}

func updateEvent(ctx context.Context, q dbtx, e ledger.Event) error {
	tag, err := q.Exec(ctx, `UPDATE events SET total_tickets_sold = $3, total_revenue = $4, is_active = $5,
  version = version + 1
WHERE organizer = $1 AND event_id = $2 AND version = $6`,
		e.Organizer, e.EventID, numericParam(e.TotalTicketsSold), numericParam(e.TotalRevenue), e.IsActive,
		int64(e.Version))
	if err := expectOne(tag, err, ErrConflict); err != nil {
		return fmt.Errorf("update %s: %w", e.Key(), err)
	}
	return nil
}

func insertTier(ctx context.Context, q dbtx, t ledger.Tier) error {
	tag, err := q.Exec(ctx, `INSERT INTO tiers (organizer, event_id, tier_id, price, max_supply,
  current_supply, is_active, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
ON CONFLICT DO NOTHING`,
		t.Event.Organizer, t.Event.EventID, t.TierID, numericParam(t.Price), numericParam(t.MaxSupply),
		numericParam(t.CurrentSupply), t.IsActive)
	if err := expectOne(tag, err, ErrAlreadyExists); err != nil {
		return fmt.Errorf("insert %s: %w", t.Key(), err)
	}
	return nil
}

func updateTier(ctx context.Context, q dbtx, t ledger.Tier) error {
	tag, err := q.Exec(ctx, `UPDATE tiers SET current_supply = $4, is_active = $5, version = version + 1
WHERE organizer = $1 AND event_id = $2 AND tier_id = $3 AND version = $6`,
		t.Event.Organizer, t.Event.EventID, t.TierID, numericParam(t.CurrentSupply), t.IsActive,
		int64(t.Version))
	if err := expectOne(tag, err, ErrConflict); err != nil {
		return fmt.Errorf("update %s: %w", t.Key(), err)
	}
	return nil
}

func (s *Store) GetTally(ctx context.Context, key ledger.TallyKey) (ledger.Tally, error) {
	row := s.Pool.QueryRow(ctx, `SELECT count::text, version FROM agent_event_tallies
WHERE agent_owner = $1 AND agent_id = $2 AND organizer = $3 AND event_id = $4`,
		key.Agent.Owner, key.Agent.AgentID, key.Event.Organizer, key.Event.EventID)
	t := ledger.Tally{Agent: key.Agent, Event: key.Event}
	var version int64
	if err := row.Scan(scanU64(&t.Count), &version); err != nil {
		return ledger.Tally{}, mapNotFound(err)
	}
	t.Version = uint64(version)
	return t, nil
}

func insertTally(ctx context.Context, q dbtx, t ledger.Tally) error {
	tag, err := q.Exec(ctx, `INSERT INTO agent_event_tallies (agent_owner, agent_id, organizer, event_id, count, version)
VALUES ($1, $2, $3, $4, $5, 1)
ON CONFLICT DO NOTHING`,
		t.Agent.Owner, t.Agent.AgentID, t.Event.Organizer, t.Event.EventID, numericParam(t.Count))
	if err := expectOne(tag, err, ErrAlreadyExists); err != nil {
		return fmt.Errorf("insert %s: %w", t.Key(), err)
	}
	return nil
}

func updateTally(ctx context.Context, q dbtx, t ledger.Tally) error {
	tag, err := q.Exec(ctx, `UPDATE agent_event_tallies SET count = $5, version = version + 1
WHERE agent_owner = $1 AND agent_id = $2 AND organizer = $3 AND event_id = $4 AND version = $6`,
		t.Agent.Owner, t.Agent.AgentID, t.Event.Organizer, t.Event.EventID, numericParam(t.Count),
		int64(t.Version))
	if err := expectOne(tag, err, ErrConflict); err != nil {
		return fmt.Errorf("update %s: %w", t.Key(), err)
	}
	return nil
}
