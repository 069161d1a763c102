package ledger

import (
	"errors"

	"pulse-ledger/internal/amount"
)

var (
	ErrInvalidInput              = errors.New("invalid_input")
	ErrInvalidFeeBps             = errors.New("invalid_fee_bps")
	ErrInvalidPrice              = errors.New("invalid_price")
	ErrInvalidSupply             = errors.New("invalid_supply")
	ErrInvalidBudget             = errors.New("invalid_budget")
	ErrUnauthorized              = errors.New("unauthorized")
	ErrAgentInactive             = errors.New("agent_inactive")
	ErrEventNotActive            = errors.New("event_not_active")
	ErrTierNotActive             = errors.New("tier_not_active")
	ErrAutoPurchaseDisabled      = errors.New("auto_purchase_disabled")
	ErrInsufficientAgentBudget   = errors.New("insufficient_agent_budget")
	ErrInsufficientEscrowBalance = errors.New("insufficient_escrow_balance")
	ErrTierSoldOut               = errors.New("tier_sold_out")
	ErrTicketLimitReached        = errors.New("ticket_limit_reached")
	ErrMathOverflow              = amount.ErrOverflow
	ErrMathUnderflow             = amount.ErrUnderflow

	ErrNotFound      = errors.New("not_found")
	ErrAlreadyExists = errors.New("already_exists")
	// ErrConflict means another writer committed first. It is transient.
	ErrConflict = errors.New("conflict")
)

var kinds = []error{
	ErrInvalidInput,
	ErrInvalidFeeBps,
	ErrInvalidPrice,
	ErrInvalidSupply,
	ErrInvalidBudget,
	ErrUnauthorized,
	ErrAgentInactive,
	ErrEventNotActive,
	ErrTierNotActive,
	ErrAutoPurchaseDisabled,
	ErrInsufficientAgentBudget,
	ErrInsufficientEscrowBalance,
	ErrTierSoldOut,
	ErrTicketLimitReached,
	ErrMathOverflow,
	ErrMathUnderflow,
	ErrNotFound,
	ErrAlreadyExists,
	ErrConflict,
}

// Kind returns the error code of the first ledger error kind found in err's
// chain, or "" when err is nil or carries no known kind.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return ""
}
