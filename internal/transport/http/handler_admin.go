package httptransport

import (
	"net/http"

	"pulse-ledger/internal/store"
)

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}

// Ledger lists journal entries, newest first.
func (h *Handlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		q := r.URL.Query()
		f := store.EntryFilter{
			Account: q.Get("account"),
			Type:    q.Get("type"),
			RefType: q.Get("ref_type"),
			RefID:   q.Get("ref_id"),
		}
		f.From, f.To = parseTimeRange(r)
		items, err := h.svc.Entries(r.Context(), f, limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}
