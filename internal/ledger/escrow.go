package ledger

import (
	"fmt"
	"time"

	"pulse-ledger/internal/amount"
)

// NewEscrow opens an empty escrow for agent. Only the agent's owner may
// open it.
func NewEscrow(caller string, agent Agent, now time.Time) (Escrow, error) {
	if caller == "" || caller != agent.Owner {
		return Escrow{}, ErrUnauthorized
	}
	return Escrow{
		Agent:        agent.Key(),
		Owner:        caller,
		CreatedAt:    now,
		LastActivity: now,
	}, nil
}

func (e *Escrow) authorize(caller string, agent Agent) error {
	if caller == "" || caller != agent.Owner || caller != e.Owner {
		return ErrUnauthorized
	}
	if e.Agent != agent.Key() {
		return fmt.Errorf("%w: escrow does not belong to agent", ErrUnauthorized)
	}
	return nil
}

func (e *Escrow) Deposit(caller string, agent Agent, amt uint64, now time.Time) (Entry, error) {
	if err := e.authorize(caller, agent); err != nil {
		return Entry{}, err
	}
	if amt == 0 {
		return Entry{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	balance, err := amount.Add(e.Balance, amt)
	if err != nil {
		return Entry{}, err
	}
	deposited, err := amount.Add(e.TotalDeposited, amt)
	if err != nil {
		return Entry{}, err
	}
	e.Balance = balance
	e.TotalDeposited = deposited
	e.LastActivity = now
	return e.entry(EntryEscrowDeposit, DirectionCredit, amt, "owner", caller, now), nil
}

func (e *Escrow) Withdraw(caller string, agent Agent, amt uint64, now time.Time) (Entry, error) {
	if err := e.authorize(caller, agent); err != nil {
		return Entry{}, err
	}
	if amt == 0 {
		return Entry{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if amt > e.Balance {
		return Entry{}, ErrInsufficientEscrowBalance
	}
	balance, err := amount.Sub(e.Balance, amt)
	if err != nil {
		return Entry{}, err
	}
	withdrawn, err := amount.Add(e.TotalWithdrawn, amt)
	if err != nil {
		return Entry{}, err
	}
	e.Balance = balance
	e.TotalWithdrawn = withdrawn
	e.LastActivity = now
	return e.entry(EntryEscrowWithdraw, DirectionDebit, amt, "owner", caller, now), nil
}

// spend is reachable only through the purchase coordinator.
func (e *Escrow) spend(amt uint64, ticketID string, now time.Time) (Entry, error) {
	if amt > e.Balance {
		return Entry{}, ErrInsufficientEscrowBalance
	}
	balance, err := amount.Sub(e.Balance, amt)
	if err != nil {
		return Entry{}, err
	}
	spent, err := amount.Add(e.TotalSpent, amt)
	if err != nil {
		return Entry{}, err
	}
	e.Balance = balance
	e.TotalSpent = spent
	e.LastActivity = now
	return e.entry(EntryEscrowSpend, DirectionDebit, amt, "ticket", ticketID, now), nil
}

func (e *Escrow) entry(typ, dir string, amt uint64, refType, refID string, now time.Time) Entry {
	return Entry{
		Account:   e.Key().String(),
		Type:      typ,
		Direction: dir,
		Amount:    amt,
		RefType:   refType,
		RefID:     refID,
		CreatedAt: now,
	}
}
