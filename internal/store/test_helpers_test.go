package store

import (
	"context"
	"testing"
	"time"

	"pulse-ledger/internal/ledger"
	"pulse-ledger/internal/testutil"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(testutil.PostgresDSN(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(st.Close)
	return st
}

// seed commits an active agent with a funded escrow, and an event with one
// tier, through st.
func seed(t *testing.T, ctx context.Context, st committer, now time.Time) (ledger.Agent, ledger.Escrow, ledger.Event, ledger.Tier) {
	t.Helper()
	agent, err := ledger.NewAgent("owner", ledger.AgentParams{
		AgentID:            "bot",
		MaxBudgetPerTicket: 100,
		TotalBudget:        ^uint64(0),
		MaxTicketsPerEvent: 5,
	}, now)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	if _, err := agent.Activate("owner"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	escrow, err := ledger.NewEscrow("owner", agent, now)
	if err != nil {
		t.Fatalf("new escrow: %v", err)
	}
	dep, err := escrow.Deposit("owner", agent, 1000, now)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	event, err := ledger.NewEvent("org", "gig", 500, now)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	tier, err := ledger.NewTier("org", event, "ga", 40, 3)
	if err != nil {
		t.Fatalf("new tier: %v", err)
	}
	cs := &ledger.Changeset{
		Agents:  []ledger.Agent{agent},
		Escrows: []ledger.Escrow{escrow},
		Events:  []ledger.Event{event},
		Tiers:   []ledger.Tier{tier},
		Entries: []ledger.Entry{dep},
	}
	if err := st.Commit(ctx, cs); err != nil {
		t.Fatalf("seed commit: %v", err)
	}
	return cs.Agents[0], cs.Escrows[0], cs.Events[0], cs.Tiers[0]
}

type committer interface {
	Commit(ctx context.Context, cs *ledger.Changeset) error
}
