package ledger

import (
	"fmt"
	"time"

	"pulse-ledger/internal/amount"
)

func NewEvent(organizer, eventID string, feeBps uint16, now time.Time) (Event, error) {
	if !validIdentity(organizer) {
		return Event{}, fmt.Errorf("%w: organizer is required and may not contain %q", ErrInvalidInput, KeySeparator)
	}
	if feeBps > amount.MaxBps {
		return Event{}, ErrInvalidFeeBps
	}
	if !validIdentity(eventID) || len(eventID) > MaxEventIDLen {
		return Event{}, fmt.Errorf("%w: event_id must be 1-%d bytes without %q", ErrInvalidInput, MaxEventIDLen, KeySeparator)
	}
	return Event{
		Organizer:       organizer,
		EventID:         eventID,
		OrganizerFeeBps: feeBps,
		IsActive:        true,
		CreatedAt:       now,
	}, nil
}

// SetActive flips the event's sale gate. Only the organizer may call it.
func (e *Event) SetActive(caller string, active bool) (changed bool, err error) {
	if caller == "" || caller != e.Organizer {
		return false, ErrUnauthorized
	}
	if e.IsActive == active {
		return false, nil
	}
	e.IsActive = active
	return true, nil
}

// recordSale is reachable only through the purchase coordinator.
func (e *Event) recordSale(price uint64) error {
	sold, err := amount.Add(e.TotalTicketsSold, 1)
	if err != nil {
		return err
	}
	revenue, err := amount.Add(e.TotalRevenue, price)
	if err != nil {
		return err
	}
	e.TotalTicketsSold = sold
	e.TotalRevenue = revenue
	return nil
}

func NewTier(caller string, event Event, tierID string, price, maxSupply uint64) (Tier, error) {
	if caller == "" || caller != event.Organizer {
		return Tier{}, ErrUnauthorized
	}
	if !validIdentity(tierID) || len(tierID) > MaxTierIDLen {
		return Tier{}, fmt.Errorf("%w: tier_id must be 1-%d bytes without %q", ErrInvalidInput, MaxTierIDLen, KeySeparator)
	}
	if price == 0 {
		return Tier{}, ErrInvalidPrice
	}
	if maxSupply == 0 {
		return Tier{}, ErrInvalidSupply
	}
	if !event.IsActive {
		return Tier{}, ErrEventNotActive
	}
	return Tier{
		Event:     event.Key(),
		TierID:    tierID,
		Price:     price,
		MaxSupply: maxSupply,
		IsActive:  true,
	}, nil
}

// SetActive flips the tier's sale gate. The caller must organize event,
// which must be the tier's event.
func (t *Tier) SetActive(caller string, event Event, active bool) (changed bool, err error) {
	if caller == "" || caller != event.Organizer {
		return false, ErrUnauthorized
	}
	if t.Event != event.Key() {
		return false, fmt.Errorf("%w: tier does not belong to event", ErrInvalidInput)
	}
	if t.IsActive == active {
		return false, nil
	}
	t.IsActive = active
	return true, nil
}

// reserveSupply is reachable only through the purchase coordinator.
func (t *Tier) reserveSupply(event Event, qty uint64) error {
	if !event.IsActive {
		return ErrEventNotActive
	}
	if !t.IsActive {
		return ErrTierNotActive
	}
	next, err := amount.Add(t.CurrentSupply, qty)
	if err != nil {
		return err
	}
	if next > t.MaxSupply {
		return ErrTierSoldOut
	}
	t.CurrentSupply = next
	return nil
}
