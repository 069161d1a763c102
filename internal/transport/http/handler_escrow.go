package httptransport

import "net/http"

func (h *Handlers) CreateEscrow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		escrow, err := h.svc.CreateEscrow(r.Context(), caller, agentKeyParam(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, escrow)
	}
}

func (h *Handlers) GetEscrow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		escrow, err := h.svc.Escrow(r.Context(), agentKeyParam(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, escrow)
	}
}

func (h *Handlers) Deposit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		var body amountBody
		if !decodeBody(w, r, &body) {
			return
		}
		escrow, err := h.svc.Deposit(r.Context(), caller, agentKeyParam(r), body.Amount)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, escrow)
	}
}

func (h *Handlers) Withdraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		var body amountBody
		if !decodeBody(w, r, &body) {
			return
		}
		escrow, err := h.svc.Withdraw(r.Context(), caller, agentKeyParam(r), body.Amount)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, escrow)
	}
}
