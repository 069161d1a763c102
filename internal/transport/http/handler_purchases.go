package httptransport

import (
	"net/http"
	"time"

	"pulse-ledger/internal/app/ticketing"
	"pulse-ledger/internal/store"
)

// BuyTicket performs a purchase on behalf of the caller. Any caller may act
// as the authority for any agent.
func (h *Handlers) BuyTicket() http.HandlerFunc {
	return h.purchase(false)
}

// AutoBuyTicket is BuyTicket gated on the agent's auto-purchase settings.
func (h *Handlers) AutoBuyTicket() http.HandlerFunc {
	return h.purchase(true)
}

func (h *Handlers) purchase(auto bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authority, _ := CallerFromContext(r.Context())
		var body ticketing.PurchaseRequest
		if !decodeBody(w, r, &body) {
			return
		}
		buy := h.svc.BuyTicketWithEscrow
		if auto {
			buy = h.svc.AutoBuyTicket
		}
		res, err := buy(r.Context(), authority, body)
		if err != nil {
			metricHTTPPurchaseRejected.Add(1)
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func (h *Handlers) Tickets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		q := r.URL.Query()
		f := store.TicketFilter{
			AgentOwner: q.Get("agent_owner"),
			AgentID:    q.Get("agent_id"),
			Organizer:  q.Get("organizer"),
			EventID:    q.Get("event_id"),
			TierID:     q.Get("tier_id"),
		}
		f.From, f.To = parseTimeRange(r)
		items, err := h.svc.Tickets(r.Context(), f, limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

// parseTimeRange reads optional RFC 3339 from/to query values. Malformed
// values are ignored.
func parseTimeRange(r *http.Request) (from, to *time.Time) {
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = &t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = &t
		}
	}
	return from, to
}
