package httptransport

import (
	"net/http"

	"pulse-ledger/internal/app/ticketing"
	"pulse-ledger/internal/ledger"

	"github.com/go-chi/chi/v5"
)

func eventKeyParam(r *http.Request) ledger.EventKey {
	return ledger.EventKey{Organizer: chi.URLParam(r, "organizer"), EventID: chi.URLParam(r, "event_id")}
}

func tierKeyParam(r *http.Request) ledger.TierKey {
	return ledger.TierKey{Event: eventKeyParam(r), TierID: chi.URLParam(r, "tier_id")}
}

// CreateEvent registers an event owned by the caller.
func (h *Handlers) CreateEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		var body ticketing.CreateEventInput
		if !decodeBody(w, r, &body) {
			return
		}
		event, err := h.svc.CreateEvent(r.Context(), caller, body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, event)
	}
}

func (h *Handlers) GetEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := h.svc.Event(r.Context(), eventKeyParam(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

func (h *Handlers) SetEventActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		var body activeBody
		if !decodeBody(w, r, &body) {
			return
		}
		event, err := h.svc.SetEventActive(r.Context(), caller, eventKeyParam(r), body.Active)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

func (h *Handlers) CreateTier() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		var body ticketing.CreateTierInput
		if !decodeBody(w, r, &body) {
			return
		}
		tier, err := h.svc.CreateTier(r.Context(), caller, eventKeyParam(r), body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, tier)
	}
}

func (h *Handlers) GetTier() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tier, err := h.svc.Tier(r.Context(), tierKeyParam(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tier)
	}
}

func (h *Handlers) SetTierActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		var body activeBody
		if !decodeBody(w, r, &body) {
			return
		}
		tier, err := h.svc.SetTierActive(r.Context(), caller, tierKeyParam(r), body.Active)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tier)
	}
}
