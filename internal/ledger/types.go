package ledger

import (
	"time"

	"pulse-ledger/internal/amount"
)

const (
	MaxAgentIDLen   = 32
	MaxAgentNameLen = 64
	MaxEventIDLen   = 50
	MaxTierIDLen    = 20
)

// Version is bookkeeping owned by the store: zero means the entity has never
// been committed, otherwise it is the version the entity was read at.

type Agent struct {
	Owner                 string    `json:"owner"`
	AgentID               string    `json:"agent_id"`
	Name                  string    `json:"name"`
	IsActive              bool      `json:"is_active"`
	AutoPurchaseEnabled   bool      `json:"auto_purchase_enabled"`
	AutoPurchaseThreshold uint16    `json:"auto_purchase_threshold"`
	MaxBudgetPerTicket    uint64    `json:"max_budget_per_ticket"`
	TotalBudget           uint64    `json:"total_budget"`
	SpentBudget           uint64    `json:"spent_budget"`
	MaxTicketsPerEvent    uint32    `json:"max_tickets_per_event"`
	TicketsPurchased      uint64    `json:"tickets_purchased"`
	CreatedAt             time.Time `json:"created_at"`
	LastActive            time.Time `json:"last_active"`
	Version               uint64    `json:"version"`
}

func (a Agent) Key() AgentKey {
	return AgentKey{Owner: a.Owner, AgentID: a.AgentID}
}

type Escrow struct {
	Agent          AgentKey  `json:"agent"`
	Owner          string    `json:"owner"`
	Balance        uint64    `json:"balance"`
	TotalDeposited uint64    `json:"total_deposited"`
	TotalWithdrawn uint64    `json:"total_withdrawn"`
	TotalSpent     uint64    `json:"total_spent"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivity   time.Time `json:"last_activity"`
	Version        uint64    `json:"version"`
}

func (e Escrow) Key() EscrowKey {
	return EscrowKey{Agent: e.Agent, Owner: e.Owner}
}

// Reconciles reports whether balance == deposited - withdrawn - spent.
func (e Escrow) Reconciles() bool {
	out, err := amount.Add(e.TotalWithdrawn, e.TotalSpent)
	if err != nil {
		return false
	}
	left, err := amount.Sub(e.TotalDeposited, out)
	if err != nil {
		return false
	}
	return left == e.Balance
}

type Event struct {
	Organizer        string    `json:"organizer"`
	EventID          string    `json:"event_id"`
	OrganizerFeeBps  uint16    `json:"organizer_fee_bps"`
	TotalTicketsSold uint64    `json:"total_tickets_sold"`
	TotalRevenue     uint64    `json:"total_revenue"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	Version          uint64    `json:"version"`
}

func (e Event) Key() EventKey {
	return EventKey{Organizer: e.Organizer, EventID: e.EventID}
}

type Tier struct {
	Event         EventKey `json:"event"`
	TierID        string   `json:"tier_id"`
	Price         uint64   `json:"price"`
	MaxSupply     uint64   `json:"max_supply"`
	CurrentSupply uint64   `json:"current_supply"`
	IsActive      bool     `json:"is_active"`
	Version       uint64   `json:"version"`
}

func (t Tier) Key() TierKey {
	return TierKey{Event: t.Event, TierID: t.TierID}
}

func (t Tier) SoldOut() bool {
	return t.CurrentSupply >= t.MaxSupply
}

// Tally counts the tickets one agent has bought for one event.
type Tally struct {
	Agent   AgentKey `json:"agent"`
	Event   EventKey `json:"event"`
	Count   uint64   `json:"count"`
	Version uint64   `json:"version"`
}

func (t Tally) Key() TallyKey {
	return TallyKey{Agent: t.Agent, Event: t.Event}
}

// Ticket is the receipt minted by a successful purchase.
type Ticket struct {
	ID              string    `json:"id"`
	Event           EventKey  `json:"event"`
	TierID          string    `json:"tier_id"`
	Agent           AgentKey  `json:"agent"`
	Authority       string    `json:"authority"`
	Price           uint64    `json:"price"`
	OrganizerAmount uint64    `json:"organizer_amount"`
	ProtocolAmount  uint64    `json:"protocol_amount"`
	Treasury        string    `json:"treasury"`
	PurchasedAt     time.Time `json:"purchased_at"`
}

const (
	EntryEscrowDeposit   = "escrow_deposit"
	EntryEscrowWithdraw  = "escrow_withdraw"
	EntryEscrowSpend     = "escrow_spend"
	EntryOrganizerPayout = "organizer_payout"
	EntryProtocolFee     = "protocol_fee"

	DirectionDebit  = "debit"
	DirectionCredit = "credit"
)

// Entry is one line of the append-only money movement journal. The store
// assigns the ID when it is empty.
type Entry struct {
	ID        string    `json:"id"`
	Account   string    `json:"account"`
	Type      string    `json:"type"`
	Direction string    `json:"direction"`
	Amount    uint64    `json:"amount"`
	RefType   string    `json:"ref_type"`
	RefID     string    `json:"ref_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Changeset is everything one operation writes. The store applies it
// entirely or not at all. Entities with Version 0 are inserted and must not
// exist yet; others are updated only if the stored version still matches.
// Tickets and Entries are insert-only.
type Changeset struct {
	Agents  []Agent
	Escrows []Escrow
	Events  []Event
	Tiers   []Tier
	Tallies []Tally
	Tickets []Ticket
	Entries []Entry
}

func (c *Changeset) Empty() bool {
	return len(c.Agents) == 0 && len(c.Escrows) == 0 && len(c.Events) == 0 &&
		len(c.Tiers) == 0 && len(c.Tallies) == 0 && len(c.Tickets) == 0 && len(c.Entries) == 0
}
