package store

import (
	"context"
	"sort"
	"sync"

	"pulse-ledger/internal/ledger"
)

// Memory is an in-process store with the same commit semantics as Store.
// It backs STORE_DRIVER=memory and the service tests.
type Memory struct {
	mu        sync.RWMutex
	agents    map[ledger.AgentKey]ledger.Agent
	escrows   map[ledger.EscrowKey]ledger.Escrow
	events    map[ledger.EventKey]ledger.Event
	tiers     map[ledger.TierKey]ledger.Tier
	tallies   map[ledger.TallyKey]ledger.Tally
	tickets   []ledger.Ticket
	ticketIDs map[string]struct{}
	entries   []ledger.Entry
	entryIDs  map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		agents:    map[ledger.AgentKey]ledger.Agent{},
		escrows:   map[ledger.EscrowKey]ledger.Escrow{},
		events:    map[ledger.EventKey]ledger.Event{},
		tiers:     map[ledger.TierKey]ledger.Tier{},
		tallies:   map[ledger.TallyKey]ledger.Tally{},
		ticketIDs: map[string]struct{}{},
		entryIDs:  map[string]struct{}{},
	}
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) Close() {}

func (m *Memory) GetAgent(_ context.Context, key ledger.AgentKey) (ledger.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[key]
	if !ok {
		return ledger.Agent{}, ErrNotFound
	}
	return a, nil
}

func (m *Memory) GetEscrow(_ context.Context, key ledger.EscrowKey) (ledger.Escrow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.escrows[key]
	if !ok {
		return ledger.Escrow{}, ErrNotFound
	}
	return e, nil
}

func (m *Memory) GetEvent(_ context.Context, key ledger.EventKey) (ledger.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[key]
	if !ok {
		return ledger.Event{}, ErrNotFound
	}
	return e, nil
}

func (m *Memory) GetTier(_ context.Context, key ledger.TierKey) (ledger.Tier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tiers[key]
	if !ok {
		return ledger.Tier{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) GetTally(_ context.Context, key ledger.TallyKey) (ledger.Tally, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tallies[key]
	if !ok {
		return ledger.Tally{}, ErrNotFound
	}
	return t, nil
}

// Commit checks every version and key in cs before applying any of it.
func (m *Memory) Commit(ctx context.Context, cs *ledger.Changeset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cs == nil || cs.Empty() {
		return nil
	}
	assignEntryIDs(cs)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range cs.Agents {
		cur, ok := m.agents[a.Key()]
		if err := checkVersion(ok, cur.Version, a.Version); err != nil {
			return err
		}
	}
	for _, e := range cs.Escrows {
		cur, ok := m.escrows[e.Key()]
		if err := checkVersion(ok, cur.Version, e.Version); err != nil {
			return err
		}
	}
	for _, e := range cs.Events {
		cur, ok := m.events[e.Key()]
		if err := checkVersion(ok, cur.Version, e.Version); err != nil {
			return err
		}
	}
	for _, t := range cs.Tiers {
		cur, ok := m.tiers[t.Key()]
		if err := checkVersion(ok, cur.Version, t.Version); err != nil {
			return err
		}
	}
	for _, t := range cs.Tallies {
		cur, ok := m.tallies[t.Key()]
		if err := checkVersion(ok, cur.Version, t.Version); err != nil {
			return err
		}
	}
	for _, t := range cs.Tickets {
		if _, ok := m.ticketIDs[t.ID]; ok {
			return ErrAlreadyExists
		}
	}
	for _, e := range cs.Entries {
		if _, ok := m.entryIDs[e.ID]; ok {
			return ErrAlreadyExists
		}
	}

	advanceVersions(cs)
	for _, a := range cs.Agents {
		m.agents[a.Key()] = a
	}
	for _, e := range cs.Escrows {
		m.escrows[e.Key()] = e
	}
	for _, e := range cs.Events {
		m.events[e.Key()] = e
	}
	for _, t := range cs.Tiers {
		m.tiers[t.Key()] = t
	}
	for _, t := range cs.Tallies {
		m.tallies[t.Key()] = t
	}
	for _, t := range cs.Tickets {
		m.tickets = append(m.tickets, t)
		m.ticketIDs[t.ID] = struct{}{}
	}
	for _, e := range cs.Entries {
		m.entries = append(m.entries, e)
		m.entryIDs[e.ID] = struct{}{}
	}
	return nil
}

func checkVersion(exists bool, stored, expected uint64) error {
	switch {
	case expected == 0 && exists:
		return ErrAlreadyExists
	case expected == 0:
		return nil
	case !exists || stored != expected:
		return ErrConflict
	}
	return nil
}

func (m *Memory) ListTickets(_ context.Context, f TicketFilter, limit, offset int) ([]ledger.Ticket, error) {
	limit, offset = normalizeLimit(limit, offset)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []ledger.Ticket
	for _, t := range m.tickets {
		if f.AgentOwner != "" && t.Agent.Owner != f.AgentOwner ||
			f.AgentID != "" && t.Agent.AgentID != f.AgentID ||
			f.Organizer != "" && t.Event.Organizer != f.Organizer ||
			f.EventID != "" && t.Event.EventID != f.EventID ||
			f.TierID != "" && t.TierID != f.TierID ||
			f.From != nil && t.PurchasedAt.Before(*f.From) ||
			f.To != nil && t.PurchasedAt.After(*f.To) {
			continue
		}
		matched = append(matched, t)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].PurchasedAt.Equal(matched[j].PurchasedAt) {
			return matched[i].PurchasedAt.After(matched[j].PurchasedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, limit, offset), nil
}

func (m *Memory) ListEntries(_ context.Context, f EntryFilter, limit, offset int) ([]ledger.Entry, error) {
	limit, offset = normalizeLimit(limit, offset)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []ledger.Entry
	for _, e := range m.entries {
		if f.Account != "" && e.Account != f.Account ||
			f.Type != "" && e.Type != f.Type ||
			f.RefType != "" && e.RefType != f.RefType ||
			f.RefID != "" && e.RefID != f.RefID ||
			f.From != nil && e.CreatedAt.Before(*f.From) ||
			f.To != nil && e.CreatedAt.After(*f.To) {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
