package ledger

import (
	"errors"
	"strings"
	"testing"
)

func validParams() AgentParams {
	return AgentParams{
		AgentID:               "bot-1",
		Name:                  "bot",
		MaxBudgetPerTicket:    2_000_000_000,
		TotalBudget:           10_000_000_000,
		AutoPurchaseThreshold: 8000,
		MaxTicketsPerEvent:    2,
	}
}

func TestNewAgentValidation(t *testing.T) {
	cases := []struct {
		name   string
		owner  string
		mutate func(p *AgentParams)
		want   error
	}{
		{"ok", owner, func(p *AgentParams) {}, nil},
		{"no owner", "", func(p *AgentParams) {}, ErrInvalidInput},
		{"empty id", owner, func(p *AgentParams) { p.AgentID = "" }, ErrInvalidInput},
		{"long id", owner, func(p *AgentParams) { p.AgentID = strings.Repeat("a", MaxAgentIDLen+1) }, ErrInvalidInput},
		{"long name", owner, func(p *AgentParams) { p.Name = strings.Repeat("n", MaxAgentNameLen+1) }, ErrInvalidInput},
		{"zero per-ticket budget", owner, func(p *AgentParams) { p.MaxBudgetPerTicket = 0 }, ErrInvalidBudget},
		{"zero total budget", owner, func(p *AgentParams) { p.TotalBudget = 0 }, ErrInvalidBudget},
		{"per-ticket above total", owner, func(p *AgentParams) { p.MaxBudgetPerTicket = p.TotalBudget + 1 }, ErrInvalidBudget},
		{"threshold above 100%", owner, func(p *AgentParams) { p.AutoPurchaseThreshold = 10001 }, ErrInvalidInput},
		{"zero ticket limit", owner, func(p *AgentParams) { p.MaxTicketsPerEvent = 0 }, ErrInvalidInput},
		{"separator in owner", "al/ice", func(p *AgentParams) {}, ErrInvalidInput},
		{"separator in id", owner, func(p *AgentParams) { p.AgentID = "bot/1" }, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			tc.mutate(&p)
			a, err := NewAgent(tc.owner, p, t0)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if a.IsActive || a.SpentBudget != 0 || a.TicketsPurchased != 0 {
					t.Fatalf("new agent must start inactive and unspent: %+v", a)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAgentActivateIsIdempotent(t *testing.T) {
	a, err := NewAgent(owner, validParams(), t0)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	changed, err := a.Activate(owner)
	if err != nil || !changed || !a.IsActive {
		t.Fatalf("first activate: changed=%v err=%v active=%v", changed, err, a.IsActive)
	}
	changed, err = a.Activate(owner)
	if err != nil || changed || !a.IsActive {
		t.Fatalf("second activate: changed=%v err=%v active=%v", changed, err, a.IsActive)
	}
	if _, err := a.Deactivate("someone"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	changed, err = a.Deactivate(owner)
	if err != nil || !changed || a.IsActive {
		t.Fatalf("deactivate: changed=%v err=%v active=%v", changed, err, a.IsActive)
	}
}

func TestAgentAddBudget(t *testing.T) {
	a, _ := NewAgent(owner, validParams(), t0)
	if err := a.AddBudget("someone", 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := a.AddBudget(owner, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid_input, got %v", err)
	}
	if err := a.AddBudget(owner, 5); err != nil {
		t.Fatalf("add budget: %v", err)
	}
	if a.TotalBudget != 10_000_000_005 {
		t.Fatalf("unexpected total budget %d", a.TotalBudget)
	}
	if err := a.AddBudget(owner, ^uint64(0)); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected math_overflow, got %v", err)
	}
	if a.TotalBudget != 10_000_000_005 {
		t.Fatalf("overflowing add changed total budget to %d", a.TotalBudget)
	}
}

func TestAgentUpdateConfig(t *testing.T) {
	a, _ := NewAgent(owner, validParams(), t0)
	zero := uint64(0)
	bad := uint16(10001)
	limit := uint32(9)
	if err := a.UpdateConfig(owner, AgentConfigUpdate{MaxBudgetPerTicket: &zero}); !errors.Is(err, ErrInvalidBudget) {
		t.Fatalf("expected invalid_budget, got %v", err)
	}
	if err := a.UpdateConfig(owner, AgentConfigUpdate{AutoPurchaseThreshold: &bad, MaxTicketsPerEvent: &limit}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid_input, got %v", err)
	}
	if a.MaxTicketsPerEvent != 2 {
		t.Fatalf("rejected update was partially applied: %+v", a)
	}
	perTicket := uint64(3_000_000_000)
	threshold := uint16(10000)
	if err := a.UpdateConfig(owner, AgentConfigUpdate{MaxBudgetPerTicket: &perTicket, AutoPurchaseThreshold: &threshold, MaxTicketsPerEvent: &limit}); err != nil {
		t.Fatalf("update config: %v", err)
	}
	if a.MaxBudgetPerTicket != perTicket || a.AutoPurchaseThreshold != threshold || a.MaxTicketsPerEvent != limit {
		t.Fatalf("update not applied: %+v", a)
	}
	if err := a.UpdateConfig("someone", AgentConfigUpdate{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAgentAutoPurchase(t *testing.T) {
	a, _ := NewAgent(owner, validParams(), t0)
	changed, err := a.SetAutoPurchase(owner, true)
	if err != nil || !changed || !a.AutoPurchaseEnabled {
		t.Fatalf("enable: changed=%v err=%v", changed, err)
	}
	ceiling, err := a.AutoPurchaseCeiling()
	if err != nil {
		t.Fatalf("ceiling: %v", err)
	}
	if ceiling != 1_600_000_000 {
		t.Fatalf("expected ceiling 1600000000, got %d", ceiling)
	}
	if _, err := a.SetAutoPurchase("someone", false); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
