package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"pulse-ledger/internal/ledger"
)

type ledgerStore interface {
	committer
	Ping(ctx context.Context) error
	GetAgent(ctx context.Context, key ledger.AgentKey) (ledger.Agent, error)
	GetEscrow(ctx context.Context, key ledger.EscrowKey) (ledger.Escrow, error)
	GetEvent(ctx context.Context, key ledger.EventKey) (ledger.Event, error)
	GetTier(ctx context.Context, key ledger.TierKey) (ledger.Tier, error)
	GetTally(ctx context.Context, key ledger.TallyKey) (ledger.Tally, error)
	ListTickets(ctx context.Context, f TicketFilter, limit, offset int) ([]ledger.Ticket, error)
	ListEntries(ctx context.Context, f EntryFilter, limit, offset int) ([]ledger.Entry, error)
}

var contractNow = time.Date(2026, 5, 4, 20, 30, 0, 0, time.UTC)

func TestMemoryContract(t *testing.T) {
	runContract(t, context.Background(), func(t *testing.T) ledgerStore { return NewMemory() })
}

func TestPostgresContract(t *testing.T) {
	runContract(t, context.Background(), func(t *testing.T) ledgerStore {
		return openStore(t)
	})
}

func runContract(t *testing.T, ctx context.Context, open func(t *testing.T) ledgerStore) {
	t.Run("ping", func(t *testing.T) {
		st := open(t)
		if err := st.Ping(ctx); err != nil {
			t.Fatalf("ping failed: %v", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		st := open(t)
		agent, escrow, event, tier := seed(t, ctx, st, contractNow)
		if agent.Version != 1 || escrow.Version != 1 || event.Version != 1 || tier.Version != 1 {
			t.Fatalf("expected version 1 after insert, got %d %d %d %d", agent.Version, escrow.Version, event.Version, tier.Version)
		}
		gotAgent, err := st.GetAgent(ctx, agent.Key())
		if err != nil {
			t.Fatalf("get agent: %v", err)
		}
		if gotAgent.TotalBudget != ^uint64(0) || gotAgent.MaxBudgetPerTicket != 100 || !gotAgent.IsActive ||
			gotAgent.MaxTicketsPerEvent != 5 || gotAgent.Version != 1 || !gotAgent.CreatedAt.Equal(contractNow) {
			t.Fatalf("agent did not round trip: %+v", gotAgent)
		}
		gotEscrow, err := st.GetEscrow(ctx, escrow.Key())
		if err != nil {
			t.Fatalf("get escrow: %v", err)
		}
		if gotEscrow.Balance != 1000 || gotEscrow.TotalDeposited != 1000 || !gotEscrow.Reconciles() {
			t.Fatalf("escrow did not round trip: %+v", gotEscrow)
		}
		gotEvent, err := st.GetEvent(ctx, event.Key())
		if err != nil {
			t.Fatalf("get event: %v", err)
		}
		if gotEvent.OrganizerFeeBps != 500 || !gotEvent.IsActive {
			t.Fatalf("event did not round trip: %+v", gotEvent)
		}
		gotTier, err := st.GetTier(ctx, tier.Key())
		if err != nil {
			t.Fatalf("get tier: %v", err)
		}
		if gotTier.Price != 40 || gotTier.MaxSupply != 3 || gotTier.CurrentSupply != 0 {
			t.Fatalf("tier did not round trip: %+v", gotTier)
		}
		if _, err := st.GetTally(ctx, ledger.TallyKey{Agent: agent.Key(), Event: event.Key()}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected not found tally, got %v", err)
		}
		if _, err := st.GetAgent(ctx, ledger.AgentKey{Owner: "owner", AgentID: "missing"}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected not found agent, got %v", err)
		}
	})

	t.Run("duplicate insert", func(t *testing.T) {
		st := open(t)
		agent, _, event, _ := seed(t, ctx, st, contractNow)
		vip, err := ledger.NewTier("org", event, "vip", 90, 1)
		if err != nil {
			t.Fatalf("new tier: %v", err)
		}
		dup := agent
		dup.Version = 0
		err = st.Commit(ctx, &ledger.Changeset{Tiers: []ledger.Tier{vip}, Agents: []ledger.Agent{dup}})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected already exists, got %v", err)
		}
		if _, err := st.GetTier(ctx, vip.Key()); !errors.Is(err, ErrNotFound) {
			t.Fatalf("rejected commit wrote tier: %v", err)
		}
	})

	t.Run("stale version", func(t *testing.T) {
		st := open(t)
		agent, _, _, tier := seed(t, ctx, st, contractNow)
		first := agent
		first.Name = "renamed"
		cs := &ledger.Changeset{Agents: []ledger.Agent{first}}
		if err := st.Commit(ctx, cs); err != nil {
			t.Fatalf("first update: %v", err)
		}
		if cs.Agents[0].Version != 2 {
			t.Fatalf("expected version 2, got %d", cs.Agents[0].Version)
		}

		closed := tier
		if _, err := closed.SetActive("org", ledger.Event{Organizer: "org", EventID: "gig"}, false); err != nil {
			t.Fatalf("set active: %v", err)
		}
		stale := agent
		err := st.Commit(ctx, &ledger.Changeset{Tiers: []ledger.Tier{closed}, Agents: []ledger.Agent{stale}})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		got, err := st.GetTier(ctx, tier.Key())
		if err != nil {
			t.Fatalf("get tier: %v", err)
		}
		if !got.IsActive || got.Version != 1 {
			t.Fatalf("conflicting commit partially applied: %+v", got)
		}
	})

	t.Run("purchase", func(t *testing.T) {
		st := open(t)
		agent, escrow, event, tier := seed(t, ctx, st, contractNow)
		out, err := ledger.BuyTicketWithEscrow(ledger.PurchaseInput{
			TicketID:   NewID(),
			Authority:  "scheduler",
			TierID:     tier.TierID,
			AgentOwner: agent.Owner,
			Organizer:  event.Organizer,
			Treasury:   "treasury",
			Event:      event,
			Tier:       tier,
			Agent:      agent,
			Escrow:     escrow,
			Tally:      ledger.Tally{Agent: agent.Key(), Event: event.Key()},
		}, contractNow.Add(time.Minute))
		if err != nil {
			t.Fatalf("buy: %v", err)
		}
		if err := st.Commit(ctx, out.Changeset()); err != nil {
			t.Fatalf("commit purchase: %v", err)
		}
		tally, err := st.GetTally(ctx, out.Tally.Key())
		if err != nil {
			t.Fatalf("get tally: %v", err)
		}
		if tally.Count != 1 || tally.Version != 1 {
			t.Fatalf("unexpected tally %+v", tally)
		}
		gotEscrow, err := st.GetEscrow(ctx, escrow.Key())
		if err != nil {
			t.Fatalf("get escrow: %v", err)
		}
		if gotEscrow.Balance != 960 || gotEscrow.TotalSpent != 40 || gotEscrow.Version != 2 {
			t.Fatalf("unexpected escrow %+v", gotEscrow)
		}
		tickets, err := st.ListTickets(ctx, TicketFilter{AgentOwner: agent.Owner, AgentID: agent.AgentID}, 10, 0)
		if err != nil {
			t.Fatalf("list tickets: %v", err)
		}
		if len(tickets) != 1 || tickets[0].ID != out.Ticket.ID || tickets[0].OrganizerAmount != 38 || tickets[0].ProtocolAmount != 2 {
			t.Fatalf("unexpected tickets %+v", tickets)
		}
		none, err := st.ListTickets(ctx, TicketFilter{EventID: "other"}, 10, 0)
		if err != nil {
			t.Fatalf("list tickets: %v", err)
		}
		if len(none) != 0 {
			t.Fatalf("expected no tickets for other event, got %d", len(none))
		}
		entries, err := st.ListEntries(ctx, EntryFilter{RefType: "ticket", RefID: out.Ticket.ID}, 10, 0)
		if err != nil {
			t.Fatalf("list entries: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 purchase entries, got %d", len(entries))
		}
		for _, e := range entries {
			if e.ID == "" {
				t.Fatalf("entry without id: %+v", e)
			}
		}
		all, err := st.ListEntries(ctx, EntryFilter{Account: escrow.Key().String()}, 1, 0)
		if err != nil {
			t.Fatalf("list entries: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("expected limit to apply, got %d", len(all))
		}
	})
}
