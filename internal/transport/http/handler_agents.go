package httptransport

import (
	"encoding/json"
	"net/http"

	"pulse-ledger/internal/app/ticketing"
	"pulse-ledger/internal/ledger"

	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	svc *ticketing.Service
}

func NewHandlers(svc *ticketing.Service) *Handlers {
	return &Handlers{svc: svc}
}

type amountBody struct {
	Amount uint64 `json:"amount"`
}

type enabledBody struct {
	Enabled bool `json:"enabled"`
}

type activeBody struct {
	Active bool `json:"active"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

func agentKeyParam(r *http.Request) ledger.AgentKey {
	return ledger.AgentKey{Owner: chi.URLParam(r, "owner"), AgentID: chi.URLParam(r, "agent_id")}
}

func (h *Handlers) CreateAgent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		var body ticketing.CreateAgentInput
		if !decodeBody(w, r, &body) {
			return
		}
		agent, err := h.svc.CreateAgent(r.Context(), caller, body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, agent)
	}
}

func (h *Handlers) GetAgent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, err := h.svc.Agent(r.Context(), agentKeyParam(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}

func (h *Handlers) ActivateAgent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		agent, err := h.svc.Activate(r.Context(), caller, agentKeyParam(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}

func (h *Handlers) DeactivateAgent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		agent, err := h.svc.Deactivate(r.Context(), caller, agentKeyParam(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}

func (h *Handlers) AddBudget() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		var body amountBody
		if !decodeBody(w, r, &body) {
			return
		}
		agent, err := h.svc.AddBudget(r.Context(), caller, agentKeyParam(r), body.Amount)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}

func (h *Handlers) ToggleAutoPurchase() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		var body enabledBody
		if !decodeBody(w, r, &body) {
			return
		}
		agent, err := h.svc.ToggleAutoPurchase(r.Context(), caller, agentKeyParam(r), body.Enabled)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}

func (h *Handlers) UpdateAgentConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		var body ledger.AgentConfigUpdate
		if !decodeBody(w, r, &body) {
			return
		}
		agent, err := h.svc.UpdateConfig(r.Context(), caller, agentKeyParam(r), body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}
