package httptransport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulse-ledger/internal/app/ticketing"
	"pulse-ledger/internal/config"
	"pulse-ledger/internal/ledger"
	"pulse-ledger/internal/store"
)

const adminKey = "admin-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := ticketing.NewService(store.NewMemory(), ticketing.Config{
		Treasury:     "pulse-treasury",
		MaxRetries:   3,
		RetryInitial: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return NewRouter(svc, config.ServerConfig{AdminAPIKey: adminKey, TreasuryID: "pulse-treasury"})
}

func do(t *testing.T, h http.Handler, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

// seedRoutes funds an active agent and opens a one-seat tier priced at 1e9.
func seedRoutes(t *testing.T, h http.Handler) {
	t.Helper()
	steps := []struct {
		path   string
		caller string
		body   any
		want   int
	}{
		{"/api/agents", "alice", map[string]any{
			"agent_id":                "bot-1",
			"name":                    "front row",
			"max_budget_per_ticket":   2_000_000_000,
			"total_budget":            10_000_000_000,
			"auto_purchase_threshold": 5000,
			"max_tickets_per_event":   4,
		}, http.StatusCreated},
		{"/api/agents/alice/bot-1/activate", "alice", nil, http.StatusOK},
		{"/api/agents/alice/bot-1/escrow", "alice", nil, http.StatusCreated},
		{"/api/agents/alice/bot-1/escrow/deposit", "alice", map[string]any{"amount": 5_000_000_000}, http.StatusOK},
		{"/api/events", "venue", map[string]any{"event_id": "gig-2026", "organizer_fee_bps": 250}, http.StatusCreated},
		{"/api/events/venue/gig-2026/tiers", "venue", map[string]any{"tier_id": "ga", "price": 1_000_000_000, "max_supply": 1}, http.StatusCreated},
	}
	for _, s := range steps {
		rec := do(t, h, http.MethodPost, s.path, s.caller, s.body)
		if rec.Code != s.want {
			t.Fatalf("POST %s status = %d, want %d (body %s)", s.path, rec.Code, s.want, rec.Body.String())
		}
	}
}

var buyGA = map[string]any{
	"agent_owner": "alice",
	"agent_id":    "bot-1",
	"organizer":   "venue",
	"event_id":    "gig-2026",
	"tier_id":     "ga",
}

func TestPurchaseFlow(t *testing.T) {
	h := newTestRouter(t)
	seedRoutes(t, h)

	rec := do(t, h, http.MethodPost, "/api/purchases", "scheduler", buyGA)
	mustStatus(t, rec, http.StatusCreated)
	var res struct {
		Ticket struct {
			ID        string `json:"id"`
			Authority string `json:"authority"`
			Price     uint64 `json:"price"`
		} `json:"ticket"`
		Split struct {
			Organizer uint64 `json:"organizer_amount"`
			Protocol  uint64 `json:"protocol_amount"`
		} `json:"split"`
		EscrowBalance uint64 `json:"escrow_balance"`
		CurrentSupply uint64 `json:"current_supply"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode purchase: %v", err)
	}
	if res.Ticket.ID == "" || res.Ticket.Authority != "scheduler" || res.Ticket.Price != 1_000_000_000 {
		t.Fatalf("unexpected ticket: %+v", res.Ticket)
	}
	if res.Split.Organizer != 975_000_000 || res.Split.Protocol != 25_000_000 {
		t.Fatalf("unexpected split: %+v", res.Split)
	}
	if res.EscrowBalance != 4_000_000_000 || res.CurrentSupply != 1 {
		t.Fatalf("balance=%d supply=%d", res.EscrowBalance, res.CurrentSupply)
	}

	rec = do(t, h, http.MethodPost, "/api/purchases", "scheduler", buyGA)
	mustStatus(t, rec, http.StatusConflict)
	if code := errorCode(t, rec); code != "tier_sold_out" {
		t.Fatalf("second purchase error = %q", code)
	}

	rec = do(t, h, http.MethodGet, "/api/tickets?agent_owner=alice&agent_id=bot-1", "", nil)
	mustStatus(t, rec, http.StatusOK)
	var list struct {
		Items []ledger.Ticket `json:"items"`
		Limit int             `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode tickets: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != res.Ticket.ID || list.Limit != 50 {
		t.Fatalf("unexpected ticket list: %+v", list)
	}

	rec = do(t, h, http.MethodGet, "/api/agents/alice/bot-1/escrow", "", nil)
	mustStatus(t, rec, http.StatusOK)
	var escrow ledger.Escrow
	if err := json.Unmarshal(rec.Body.Bytes(), &escrow); err != nil {
		t.Fatalf("decode escrow: %v", err)
	}
	if escrow.Balance != 4_000_000_000 || escrow.TotalSpent != 1_000_000_000 || !escrow.Reconciles() {
		t.Fatalf("unexpected escrow: %+v", escrow)
	}
}

func TestAutoPurchaseRoute(t *testing.T) {
	h := newTestRouter(t)
	seedRoutes(t, h)

	rec := do(t, h, http.MethodPost, "/api/purchases/auto", "scheduler", buyGA)
	mustStatus(t, rec, http.StatusUnprocessableEntity)
	if code := errorCode(t, rec); code != "auto_purchase_disabled" {
		t.Fatalf("error = %q", code)
	}

	rec = do(t, h, http.MethodPost, "/api/agents/alice/bot-1/auto-purchase", "alice", map[string]any{"enabled": true})
	mustStatus(t, rec, http.StatusOK)

	rec = do(t, h, http.MethodPost, "/api/purchases/auto", "scheduler", buyGA)
	mustStatus(t, rec, http.StatusCreated)
}

func TestMutationsRequireCaller(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/purchases", "", buyGA)
	mustStatus(t, rec, http.StatusUnauthorized)
	if code := errorCode(t, rec); code != "missing_caller" {
		t.Fatalf("error = %q", code)
	}
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	h := newTestRouter(t)
	seedRoutes(t, h)

	tests := []struct {
		name   string
		method string
		path   string
		caller string
		body   any
		status int
		code   string
	}{
		{"stranger deposits", http.MethodPost, "/api/agents/alice/bot-1/escrow/deposit", "mallory", map[string]any{"amount": 1}, http.StatusForbidden, "unauthorized"},
		{"unknown agent", http.MethodGet, "/api/agents/alice/nobody", "", nil, http.StatusNotFound, "not_found"},
		{"duplicate event", http.MethodPost, "/api/events", "venue", map[string]any{"event_id": "gig-2026"}, http.StatusConflict, "already_exists"},
		{"fee too high", http.MethodPost, "/api/events", "venue", map[string]any{"event_id": "other", "organizer_fee_bps": 10001}, http.StatusBadRequest, "invalid_fee_bps"},
		{"overdraw", http.MethodPost, "/api/agents/alice/bot-1/escrow/withdraw", "alice", map[string]any{"amount": 6_000_000_000}, http.StatusUnprocessableEntity, "insufficient_escrow_balance"},
		{"bad json", http.MethodPost, "/api/agents/alice/bot-1/budget", "alice", "{", http.StatusBadRequest, "invalid_json"},
		{"agent without ticket limit", http.MethodPost, "/api/agents", "alice", map[string]any{"agent_id": "bot-2", "max_budget_per_ticket": 1, "total_budget": 1}, http.StatusBadRequest, "invalid_input"},
		{"separator in event id", http.MethodPost, "/api/events", "venue", map[string]any{"event_id": "gig/2026"}, http.StatusBadRequest, "invalid_input"},
		{"organizer only", http.MethodPost, "/api/events/venue/gig-2026/active", "alice", map[string]any{"active": false}, http.StatusForbidden, "unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.caller, tt.body)
			mustStatus(t, rec, tt.status)
			if code := errorCode(t, rec); code != tt.code {
				t.Fatalf("error = %q, want %q", code, tt.code)
			}
		})
	}
}

func TestLedgerRequiresAdmin(t *testing.T) {
	h := newTestRouter(t)
	seedRoutes(t, h)

	rec := do(t, h, http.MethodGet, "/api/ledger", "", nil)
	mustStatus(t, rec, http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodGet, "/api/ledger?type=escrow_deposit", nil)
	req.Header.Set("X-Admin-Key", adminKey)
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	mustStatus(t, out, http.StatusOK)
	var list struct {
		Items []ledger.Entry `json:"items"`
	}
	if err := json.Unmarshal(out.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode ledger: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Amount != 5_000_000_000 || list.Items[0].Direction != ledger.DirectionCredit {
		t.Fatalf("unexpected entries: %+v", list.Items)
	}
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	mustStatus(t, rec, http.StatusOK)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{ledger.ErrInvalidPrice, http.StatusBadRequest, "invalid_price"},
		{ledger.ErrMathOverflow, http.StatusBadRequest, "math_overflow"},
		{ledger.ErrTicketLimitReached, http.StatusUnprocessableEntity, "ticket_limit_reached"},
		{ledger.ErrConflict, http.StatusConflict, "conflict"},
		{http.ErrHandlerTimeout, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		status, code := statusFor(tt.err)
		if status != tt.status || code != tt.code {
			t.Fatalf("statusFor(%v) = %d %q, want %d %q", tt.err, status, code, tt.status, tt.code)
		}
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", 50, 0},
		{"limit=10&offset=20", 10, 20},
		{"limit=0", 1, 0},
		{"limit=9999", 500, 0},
		{"offset=-3", 50, 0},
		{"limit=abc", 50, 0},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/tickets?"+tt.query, nil)
		limit, offset := ParsePagination(req)
		if limit != tt.limit || offset != tt.offset {
			t.Fatalf("%q: got %d/%d, want %d/%d", tt.query, limit, offset, tt.limit, tt.offset)
		}
	}
}
