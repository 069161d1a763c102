package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"pulse-ledger/internal/app/ticketing"
	"pulse-ledger/internal/config"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(svc *ticketing.Service, cfg config.ServerConfig) *chi.Mux {
	h := NewHandlers(svc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(StatusMetricsMiddleware)

	r.With(APILogMiddleware()).Get("/healthz", h.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Get("/agents/{owner}/{agent_id}", h.GetAgent())
		r.Get("/agents/{owner}/{agent_id}/escrow", h.GetEscrow())
		r.Get("/events/{organizer}/{event_id}", h.GetEvent())
		r.Get("/events/{organizer}/{event_id}/tiers/{tier_id}", h.GetTier())
		r.Get("/tickets", h.Tickets())

		r.Group(func(r chi.Router) {
			r.Use(CallerMiddleware())

			r.Post("/agents", h.CreateAgent())
			r.Post("/agents/{owner}/{agent_id}/activate", h.ActivateAgent())
			r.Post("/agents/{owner}/{agent_id}/deactivate", h.DeactivateAgent())
			r.Post("/agents/{owner}/{agent_id}/budget", h.AddBudget())
			r.Post("/agents/{owner}/{agent_id}/auto-purchase", h.ToggleAutoPurchase())
			r.Post("/agents/{owner}/{agent_id}/config", h.UpdateAgentConfig())

			r.Post("/agents/{owner}/{agent_id}/escrow", h.CreateEscrow())
			r.Post("/agents/{owner}/{agent_id}/escrow/deposit", h.Deposit())
			r.Post("/agents/{owner}/{agent_id}/escrow/withdraw", h.Withdraw())

			r.Post("/events", h.CreateEvent())
			r.Post("/events/{organizer}/{event_id}/active", h.SetEventActive())
			r.Post("/events/{organizer}/{event_id}/tiers", h.CreateTier())
			r.Post("/events/{organizer}/{event_id}/tiers/{tier_id}/active", h.SetTierActive())

			r.Post("/purchases", h.BuyTicket())
			r.Post("/purchases/auto", h.AutoBuyTicket())
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/ledger", h.Ledger())

			r.Route("/debug", func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Get("/vars", expvar.Handler().ServeHTTP)
			})
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
