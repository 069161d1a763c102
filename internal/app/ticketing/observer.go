package ticketing

import (
	"context"

	"pulse-ledger/internal/ledger"

	"github.com/rs/zerolog/log"
)

// Observer receives the outcome of every purchase attempt once retries are
// over. It must not block.
type Observer interface {
	PurchaseSucceeded(ctx context.Context, authority string, res PurchaseResult)
	PurchaseFailed(ctx context.Context, authority string, req PurchaseRequest, auto bool, err error)
}

// LogObserver writes purchase outcomes to the global logger. It is the
// default live log.
type LogObserver struct{}

func (LogObserver) PurchaseSucceeded(_ context.Context, authority string, res PurchaseResult) {
	log.Info().
		Str("ticket_id", res.Ticket.ID).
		Str("authority", authority).
		Str("agent", res.Ticket.Agent.String()).
		Str("event", res.Ticket.Event.String()).
		Str("tier_id", res.Ticket.TierID).
		Uint64("price", res.Ticket.Price).
		Uint64("organizer_amount", res.Split.Organizer).
		Uint64("protocol_amount", res.Split.Protocol).
		Uint64("tickets_purchased", res.TicketsPurchased).
		Uint64("spent_budget", res.SpentBudget).
		Uint64("current_supply", res.CurrentSupply).
		Bool("auto", res.Auto).
		Int("attempts", res.Attempts).
		Msg("ticket_purchased")
}

func (LogObserver) PurchaseFailed(_ context.Context, authority string, req PurchaseRequest, auto bool, err error) {
	ev := log.Warn()
	if ledger.Kind(err) == "" {
		ev = log.Error()
	}
	ev.Err(err).
		Str("kind", ledger.Kind(err)).
		Str("authority", authority).
		Str("agent", req.agentKey().String()).
		Str("event", req.eventKey().String()).
		Str("tier_id", req.TierID).
		Bool("auto", auto).
		Msg("ticket_purchase_failed")
}
