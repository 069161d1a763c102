package ledger

import (
	"fmt"
	"time"

	"pulse-ledger/internal/amount"
)

// PurchaseInput is a snapshot of every account a purchase touches plus the
// caller's arguments. Tally may be a zero-count, never-committed value when
// the agent has not bought for this event yet.
type PurchaseInput struct {
	TicketID   string
	Authority  string
	TierID     string
	AgentOwner string
	Organizer  string
	Treasury   string

	Event  Event
	Tier   Tier
	Agent  Agent
	Escrow Escrow
	Tally  Tally
}

// PurchaseOutcome holds the post-purchase state of every touched account.
type PurchaseOutcome struct {
	Agent   Agent
	Escrow  Escrow
	Event   Event
	Tier    Tier
	Tally   Tally
	Ticket  Ticket
	Split   amount.Split
	Entries []Entry
}

// Changeset lists everything the purchase writes, for a single commit.
func (o PurchaseOutcome) Changeset() *Changeset {
	return &Changeset{
		Agents:  []Agent{o.Agent},
		Escrows: []Escrow{o.Escrow},
		Events:  []Event{o.Event},
		Tiers:   []Tier{o.Tier},
		Tallies: []Tally{o.Tally},
		Tickets: []Ticket{o.Ticket},
		Entries: o.Entries,
	}
}

// BuyTicketWithEscrow sells one ticket of in.Tier to in.Agent, paid from
// in.Escrow.
//
// Authority is recorded on the ticket but is NOT checked against the agent
// owner. Any identity may trigger a purchase: spending is bounded by the
// agent's configuration and the owner-funded escrow, which is what lets an
// off-chain scheduler buy on the owner's behalf. Do not turn this into an
// owner-only check.
//
// Preconditions are evaluated in a fixed order and the first failure is
// returned. The input values are never modified; on error the returned
// outcome is zero and nothing needs to be written.
func BuyTicketWithEscrow(in PurchaseInput, now time.Time) (PurchaseOutcome, error) {
	event, tier, agent, escrow, tally := in.Event, in.Tier, in.Agent, in.Escrow, in.Tally

	if !event.IsActive {
		return PurchaseOutcome{}, ErrEventNotActive
	}
	if !tier.IsActive {
		return PurchaseOutcome{}, ErrTierNotActive
	}
	if tier.Event != event.Key() || tier.TierID != in.TierID {
		return PurchaseOutcome{}, fmt.Errorf("%w: tier does not belong to event", ErrInvalidInput)
	}
	if in.Organizer != event.Organizer {
		return PurchaseOutcome{}, fmt.Errorf("%w: organizer mismatch", ErrInvalidInput)
	}
	if !agent.IsActive {
		return PurchaseOutcome{}, ErrAgentInactive
	}
	if escrow.Agent != agent.Key() || escrow.Owner != in.AgentOwner || agent.Owner != in.AgentOwner {
		return PurchaseOutcome{}, fmt.Errorf("%w: escrow does not belong to agent", ErrInvalidInput)
	}
	if tally.Key() != (TallyKey{Agent: agent.Key(), Event: event.Key()}) {
		return PurchaseOutcome{}, fmt.Errorf("%w: tally does not match agent and event", ErrInvalidInput)
	}
	price := tier.Price
	if price > agent.MaxBudgetPerTicket {
		return PurchaseOutcome{}, ErrInvalidBudget
	}
	spent, err := amount.Add(agent.SpentBudget, price)
	if err != nil {
		return PurchaseOutcome{}, err
	}
	if spent > agent.TotalBudget {
		return PurchaseOutcome{}, ErrInsufficientAgentBudget
	}
	if escrow.Balance < price {
		return PurchaseOutcome{}, ErrInsufficientEscrowBalance
	}
	if tier.SoldOut() {
		return PurchaseOutcome{}, ErrTierSoldOut
	}
	if tally.Count >= uint64(agent.MaxTicketsPerEvent) {
		return PurchaseOutcome{}, ErrTicketLimitReached
	}

	split, err := amount.SplitSale(price, event.OrganizerFeeBps)
	if err != nil {
		return PurchaseOutcome{}, fmt.Errorf("%w: %v", ErrInvalidFeeBps, err)
	}
	purchased, err := amount.Add(agent.TicketsPurchased, 1)
	if err != nil {
		return PurchaseOutcome{}, err
	}
	count, err := amount.Add(tally.Count, 1)
	if err != nil {
		return PurchaseOutcome{}, err
	}
	spend, err := escrow.spend(price, in.TicketID, now)
	if err != nil {
		return PurchaseOutcome{}, err
	}
	if err := tier.reserveSupply(event, 1); err != nil {
		return PurchaseOutcome{}, err
	}
	if err := event.recordSale(price); err != nil {
		return PurchaseOutcome{}, err
	}
	agent.SpentBudget = spent
	agent.TicketsPurchased = purchased
	agent.LastActive = now
	tally.Count = count

	entries := []Entry{spend}
	if split.Organizer > 0 {
		entries = append(entries, payout(EntryOrganizerPayout, "organizer/"+in.Organizer, split.Organizer, in.TicketID, now))
	}
	if split.Protocol > 0 {
		entries = append(entries, payout(EntryProtocolFee, "treasury/"+in.Treasury, split.Protocol, in.TicketID, now))
	}

	return PurchaseOutcome{
		Agent:  agent,
		Escrow: escrow,
		Event:  event,
		Tier:   tier,
		Tally:  tally,
		Ticket: Ticket{
			ID:              in.TicketID,
			Event:           event.Key(),
			TierID:          tier.TierID,
			Agent:           agent.Key(),
			Authority:       in.Authority,
			Price:           price,
			OrganizerAmount: split.Organizer,
			ProtocolAmount:  split.Protocol,
			Treasury:        in.Treasury,
			PurchasedAt:     now,
		},
		Split:   split,
		Entries: entries,
	}, nil
}

func payout(typ, account string, amt uint64, ticketID string, now time.Time) Entry {
	return Entry{
		Account:   account,
		Type:      typ,
		Direction: DirectionCredit,
		Amount:    amt,
		RefType:   "ticket",
		RefID:     ticketID,
		CreatedAt: now,
	}
}

// CheckAutoPurchase applies the extra gates an automatic, agent-initiated
// purchase must pass before the coordinator runs: auto purchase must be
// enabled and the tier price must be within auto_purchase_threshold of
// max_budget_per_ticket.
func CheckAutoPurchase(agent Agent, tier Tier) error {
	if !agent.AutoPurchaseEnabled {
		return ErrAutoPurchaseDisabled
	}
	ceiling, err := agent.AutoPurchaseCeiling()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if tier.Price > ceiling {
		return fmt.Errorf("%w: price %d above auto purchase ceiling %d", ErrInvalidBudget, tier.Price, ceiling)
	}
	return nil
}
