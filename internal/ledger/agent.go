package ledger

import (
	"fmt"
	"time"

	"pulse-ledger/internal/amount"
)

type AgentParams struct {
	AgentID               string
	Name                  string
	MaxBudgetPerTicket    uint64
	TotalBudget           uint64
	AutoPurchaseEnabled   bool
	AutoPurchaseThreshold uint16
	MaxTicketsPerEvent    uint32
}

// NewAgent validates p and returns an inactive agent owned by owner. It is
// not persisted.
func NewAgent(owner string, p AgentParams, now time.Time) (Agent, error) {
	if !validIdentity(owner) {
		return Agent{}, fmt.Errorf("%w: owner is required and may not contain %q", ErrInvalidInput, KeySeparator)
	}
	if !validIdentity(p.AgentID) || len(p.AgentID) > MaxAgentIDLen {
		return Agent{}, fmt.Errorf("%w: agent_id must be 1-%d bytes without %q", ErrInvalidInput, MaxAgentIDLen, KeySeparator)
	}
	if len(p.Name) > MaxAgentNameLen {
		return Agent{}, fmt.Errorf("%w: name exceeds %d bytes", ErrInvalidInput, MaxAgentNameLen)
	}
	if p.MaxBudgetPerTicket == 0 || p.TotalBudget == 0 {
		return Agent{}, fmt.Errorf("%w: budgets must be positive", ErrInvalidBudget)
	}
	if p.MaxBudgetPerTicket > p.TotalBudget {
		return Agent{}, fmt.Errorf("%w: max_budget_per_ticket exceeds total_budget", ErrInvalidBudget)
	}
	if p.AutoPurchaseThreshold > amount.MaxBps {
		return Agent{}, fmt.Errorf("%w: auto_purchase_threshold exceeds %d", ErrInvalidInput, amount.MaxBps)
	}
	// A limit of zero is still reachable through UpdateConfig to pause buying.
	if p.MaxTicketsPerEvent == 0 {
		return Agent{}, fmt.Errorf("%w: max_tickets_per_event must be positive", ErrInvalidInput)
	}
	return Agent{
		Owner:                 owner,
		AgentID:               p.AgentID,
		Name:                  p.Name,
		IsActive:              false,
		AutoPurchaseEnabled:   p.AutoPurchaseEnabled,
		AutoPurchaseThreshold: p.AutoPurchaseThreshold,
		MaxBudgetPerTicket:    p.MaxBudgetPerTicket,
		TotalBudget:           p.TotalBudget,
		MaxTicketsPerEvent:    p.MaxTicketsPerEvent,
		CreatedAt:             now,
		LastActive:            now,
	}, nil
}

func (a *Agent) authorize(caller string) error {
	if caller == "" || caller != a.Owner {
		return ErrUnauthorized
	}
	return nil
}

// Activate turns the agent on. Activating an active agent succeeds and
// reports changed=false.
func (a *Agent) Activate(caller string) (changed bool, err error) {
	return a.setActive(caller, true)
}

func (a *Agent) Deactivate(caller string) (changed bool, err error) {
	return a.setActive(caller, false)
}

func (a *Agent) setActive(caller string, active bool) (bool, error) {
	if err := a.authorize(caller); err != nil {
		return false, err
	}
	if a.IsActive == active {
		return false, nil
	}
	a.IsActive = active
	return true, nil
}

func (a *Agent) AddBudget(caller string, amt uint64) error {
	if err := a.authorize(caller); err != nil {
		return err
	}
	if amt == 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	total, err := amount.Add(a.TotalBudget, amt)
	if err != nil {
		return err
	}
	a.TotalBudget = total
	return nil
}

func (a *Agent) SetAutoPurchase(caller string, enabled bool) (changed bool, err error) {
	if err := a.authorize(caller); err != nil {
		return false, err
	}
	if a.AutoPurchaseEnabled == enabled {
		return false, nil
	}
	a.AutoPurchaseEnabled = enabled
	return true, nil
}

// AgentConfigUpdate replaces each non-nil field.
type AgentConfigUpdate struct {
	MaxBudgetPerTicket    *uint64 `json:"max_budget_per_ticket,omitempty"`
	AutoPurchaseThreshold *uint16 `json:"auto_purchase_threshold,omitempty"`
	MaxTicketsPerEvent    *uint32 `json:"max_tickets_per_event,omitempty"`
}

func (a *Agent) UpdateConfig(caller string, u AgentConfigUpdate) error {
	if err := a.authorize(caller); err != nil {
		return err
	}
	if u.MaxBudgetPerTicket != nil && *u.MaxBudgetPerTicket == 0 {
		return fmt.Errorf("%w: max_budget_per_ticket must be positive", ErrInvalidBudget)
	}
	if u.AutoPurchaseThreshold != nil && *u.AutoPurchaseThreshold > amount.MaxBps {
		return fmt.Errorf("%w: auto_purchase_threshold exceeds %d", ErrInvalidInput, amount.MaxBps)
	}
	if u.MaxBudgetPerTicket != nil {
		a.MaxBudgetPerTicket = *u.MaxBudgetPerTicket
	}
	if u.AutoPurchaseThreshold != nil {
		a.AutoPurchaseThreshold = *u.AutoPurchaseThreshold
	}
	if u.MaxTicketsPerEvent != nil {
		a.MaxTicketsPerEvent = *u.MaxTicketsPerEvent
	}
	return nil
}

// AutoPurchaseCeiling is the highest tier price an automatic purchase may
// pay: auto_purchase_threshold basis points of max_budget_per_ticket.
func (a Agent) AutoPurchaseCeiling() (uint64, error) {
	return amount.BpsShare(a.MaxBudgetPerTicket, a.AutoPurchaseThreshold)
}

// RemainingBudget is total_budget - spent_budget.
func (a Agent) RemainingBudget() (uint64, error) {
	return amount.Sub(a.TotalBudget, a.SpentBudget)
}
