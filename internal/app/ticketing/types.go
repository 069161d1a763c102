package ticketing

import (
	"pulse-ledger/internal/amount"
	"pulse-ledger/internal/ledger"
)

type CreateAgentInput struct {
	AgentID               string `json:"agent_id"`
	Name                  string `json:"name"`
	MaxBudgetPerTicket    uint64 `json:"max_budget_per_ticket"`
	TotalBudget           uint64 `json:"total_budget"`
	AutoPurchaseEnabled   bool   `json:"auto_purchase_enabled"`
	AutoPurchaseThreshold uint16 `json:"auto_purchase_threshold"`
	MaxTicketsPerEvent    uint32 `json:"max_tickets_per_event"`
}

func (in CreateAgentInput) params() ledger.AgentParams {
	return ledger.AgentParams{
		AgentID:               in.AgentID,
		Name:                  in.Name,
		MaxBudgetPerTicket:    in.MaxBudgetPerTicket,
		TotalBudget:           in.TotalBudget,
		AutoPurchaseEnabled:   in.AutoPurchaseEnabled,
		AutoPurchaseThreshold: in.AutoPurchaseThreshold,
		MaxTicketsPerEvent:    in.MaxTicketsPerEvent,
	}
}

type CreateEventInput struct {
	EventID         string `json:"event_id"`
	OrganizerFeeBps uint16 `json:"organizer_fee_bps"`
}

type CreateTierInput struct {
	TierID    string `json:"tier_id"`
	Price     uint64 `json:"price"`
	MaxSupply uint64 `json:"max_supply"`
}

// PurchaseRequest names the accounts of one purchase. The caller making the
// request is the authority.
type PurchaseRequest struct {
	AgentOwner string `json:"agent_owner"`
	AgentID    string `json:"agent_id"`
	Organizer  string `json:"organizer"`
	EventID    string `json:"event_id"`
	TierID     string `json:"tier_id"`
}

func (r PurchaseRequest) agentKey() ledger.AgentKey {
	return ledger.AgentKey{Owner: r.AgentOwner, AgentID: r.AgentID}
}

func (r PurchaseRequest) eventKey() ledger.EventKey {
	return ledger.EventKey{Organizer: r.Organizer, EventID: r.EventID}
}

// PurchaseResult is the success signal handed back to the caller and to
// observers.
type PurchaseResult struct {
	Ticket           ledger.Ticket `json:"ticket"`
	Split            amount.Split  `json:"split"`
	TicketsPurchased uint64        `json:"tickets_purchased"`
	SpentBudget      uint64        `json:"spent_budget"`
	CurrentSupply    uint64        `json:"current_supply"`
	EscrowBalance    uint64        `json:"escrow_balance"`
	EventTickets     uint64        `json:"event_tickets"`
	Auto             bool          `json:"auto"`
	Attempts         int           `json:"attempts"`
}
