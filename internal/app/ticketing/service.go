package ticketing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pulse-ledger/internal/config"
	"pulse-ledger/internal/ledger"
	"pulse-ledger/internal/store"
)

// Store is the persistence the service needs. Both store.Store and
// store.Memory satisfy it.
type Store interface {
	GetAgent(ctx context.Context, key ledger.AgentKey) (ledger.Agent, error)
	GetEscrow(ctx context.Context, key ledger.EscrowKey) (ledger.Escrow, error)
	GetEvent(ctx context.Context, key ledger.EventKey) (ledger.Event, error)
	GetTier(ctx context.Context, key ledger.TierKey) (ledger.Tier, error)
	GetTally(ctx context.Context, key ledger.TallyKey) (ledger.Tally, error)
	Commit(ctx context.Context, cs *ledger.Changeset) error
	ListTickets(ctx context.Context, f store.TicketFilter, limit, offset int) ([]ledger.Ticket, error)
	ListEntries(ctx context.Context, f store.EntryFilter, limit, offset int) ([]ledger.Entry, error)
	Ping(ctx context.Context) error
}

type Config struct {
	// Treasury is the identity credited with the protocol share of each sale.
	Treasury     string
	MaxRetries   int
	RetryInitial time.Duration
}

func ConfigFromServer(cfg config.ServerConfig) Config {
	return Config{
		Treasury:     cfg.TreasuryID,
		MaxRetries:   cfg.CommitMaxRetries,
		RetryInitial: cfg.CommitRetryInitial(),
	}
}

type Service struct {
	store    Store
	cfg      Config
	now      func() time.Time
	newID    func() string
	observer Observer
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

func NewService(st Store, cfg Config, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("ticketing: store is required")
	}
	if cfg.Treasury == "" {
		return nil, errors.New("ticketing: treasury is required")
	}
	if strings.Contains(cfg.Treasury, ledger.KeySeparator) {
		return nil, fmt.Errorf("ticketing: treasury may not contain %q", ledger.KeySeparator)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = 5 * time.Millisecond
	}
	s := &Service{
		store:    st,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    store.NewID,
		observer: LogObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Treasury() string {
	return s.cfg.Treasury
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Agents

func (s *Service) CreateAgent(ctx context.Context, caller string, in CreateAgentInput) (ledger.Agent, error) {
	agent, err := ledger.NewAgent(caller, in.params(), s.now())
	if err != nil {
		return ledger.Agent{}, err
	}
	cs := &ledger.Changeset{Agents: []ledger.Agent{agent}}
	if _, err := s.commit(ctx, "create_agent", func(context.Context) (*ledger.Changeset, error) {
		return cs, nil
	}); err != nil {
		return ledger.Agent{}, err
	}
	return cs.Agents[0], nil
}

func (s *Service) Activate(ctx context.Context, caller string, key ledger.AgentKey) (ledger.Agent, error) {
	return s.mutateAgent(ctx, "activate_agent", key, func(a *ledger.Agent) (bool, error) {
		return a.Activate(caller)
	})
}

func (s *Service) Deactivate(ctx context.Context, caller string, key ledger.AgentKey) (ledger.Agent, error) {
	return s.mutateAgent(ctx, "deactivate_agent", key, func(a *ledger.Agent) (bool, error) {
		return a.Deactivate(caller)
	})
}

func (s *Service) AddBudget(ctx context.Context, caller string, key ledger.AgentKey, amt uint64) (ledger.Agent, error) {
	return s.mutateAgent(ctx, "add_budget", key, func(a *ledger.Agent) (bool, error) {
		return true, a.AddBudget(caller, amt)
	})
}

func (s *Service) ToggleAutoPurchase(ctx context.Context, caller string, key ledger.AgentKey, enabled bool) (ledger.Agent, error) {
	return s.mutateAgent(ctx, "toggle_auto_purchase", key, func(a *ledger.Agent) (bool, error) {
		return a.SetAutoPurchase(caller, enabled)
	})
}

func (s *Service) UpdateConfig(ctx context.Context, caller string, key ledger.AgentKey, u ledger.AgentConfigUpdate) (ledger.Agent, error) {
	return s.mutateAgent(ctx, "update_config", key, func(a *ledger.Agent) (bool, error) {
		return true, a.UpdateConfig(caller, u)
	})
}

// mutateAgent loads the agent, applies fn and commits when fn reports a
// change. A no-op skips the write.
func (s *Service) mutateAgent(ctx context.Context, op string, key ledger.AgentKey, fn func(*ledger.Agent) (bool, error)) (ledger.Agent, error) {
	var out *ledger.Agent
	_, err := s.commit(ctx, op, func(ctx context.Context) (*ledger.Changeset, error) {
		agent, err := s.store.GetAgent(ctx, key)
		if err != nil {
			return nil, err
		}
		changed, err := fn(&agent)
		if err != nil {
			return nil, err
		}
		if !changed {
			out = &agent
			return nil, nil
		}
		cs := &ledger.Changeset{Agents: []ledger.Agent{agent}}
		out = &cs.Agents[0]
		return cs, nil
	})
	if err != nil {
		return ledger.Agent{}, err
	}
	return *out, nil
}

func (s *Service) Agent(ctx context.Context, key ledger.AgentKey) (ledger.Agent, error) {
	return s.store.GetAgent(ctx, key)
}

// Escrow

func (s *Service) CreateEscrow(ctx context.Context, caller string, agentKey ledger.AgentKey) (ledger.Escrow, error) {
	var out *ledger.Escrow
	_, err := s.commit(ctx, "create_escrow", func(ctx context.Context) (*ledger.Changeset, error) {
		agent, err := s.store.GetAgent(ctx, agentKey)
		if err != nil {
			return nil, err
		}
		escrow, err := ledger.NewEscrow(caller, agent, s.now())
		if err != nil {
			return nil, err
		}
		cs := &ledger.Changeset{Escrows: []ledger.Escrow{escrow}}
		out = &cs.Escrows[0]
		return cs, nil
	})
	if err != nil {
		return ledger.Escrow{}, err
	}
	return *out, nil
}

func (s *Service) Deposit(ctx context.Context, caller string, agentKey ledger.AgentKey, amt uint64) (ledger.Escrow, error) {
	return s.mutateEscrow(ctx, "deposit", agentKey, func(e *ledger.Escrow, agent ledger.Agent) (ledger.Entry, error) {
		return e.Deposit(caller, agent, amt, s.now())
	})
}

func (s *Service) Withdraw(ctx context.Context, caller string, agentKey ledger.AgentKey, amt uint64) (ledger.Escrow, error) {
	return s.mutateEscrow(ctx, "withdraw", agentKey, func(e *ledger.Escrow, agent ledger.Agent) (ledger.Entry, error) {
		return e.Withdraw(caller, agent, amt, s.now())
	})
}

func (s *Service) mutateEscrow(ctx context.Context, op string, agentKey ledger.AgentKey, fn func(*ledger.Escrow, ledger.Agent) (ledger.Entry, error)) (ledger.Escrow, error) {
	var out *ledger.Escrow
	_, err := s.commit(ctx, op, func(ctx context.Context) (*ledger.Changeset, error) {
		agent, err := s.store.GetAgent(ctx, agentKey)
		if err != nil {
			return nil, err
		}
		escrow, err := s.store.GetEscrow(ctx, ledger.EscrowKeyFor(agentKey))
		if err != nil {
			return nil, err
		}
		entry, err := fn(&escrow, agent)
		if err != nil {
			return nil, err
		}
		cs := &ledger.Changeset{Escrows: []ledger.Escrow{escrow}, Entries: []ledger.Entry{entry}}
		out = &cs.Escrows[0]
		return cs, nil
	})
	if err != nil {
		return ledger.Escrow{}, err
	}
	return *out, nil
}

func (s *Service) Escrow(ctx context.Context, agentKey ledger.AgentKey) (ledger.Escrow, error) {
	return s.store.GetEscrow(ctx, ledger.EscrowKeyFor(agentKey))
}

// Catalog

func (s *Service) CreateEvent(ctx context.Context, caller string, in CreateEventInput) (ledger.Event, error) {
	event, err := ledger.NewEvent(caller, in.EventID, in.OrganizerFeeBps, s.now())
	if err != nil {
		return ledger.Event{}, err
	}
	cs := &ledger.Changeset{Events: []ledger.Event{event}}
	if _, err := s.commit(ctx, "create_event", func(context.Context) (*ledger.Changeset, error) {
		return cs, nil
	}); err != nil {
		return ledger.Event{}, err
	}
	return cs.Events[0], nil
}

func (s *Service) SetEventActive(ctx context.Context, caller string, key ledger.EventKey, active bool) (ledger.Event, error) {
	var out *ledger.Event
	_, err := s.commit(ctx, "set_event_active", func(ctx context.Context) (*ledger.Changeset, error) {
		event, err := s.store.GetEvent(ctx, key)
		if err != nil {
			return nil, err
		}
		changed, err := event.SetActive(caller, active)
		if err != nil {
			return nil, err
		}
		if !changed {
			out = &event
			return nil, nil
		}
		cs := &ledger.Changeset{Events: []ledger.Event{event}}
		out = &cs.Events[0]
		return cs, nil
	})
	if err != nil {
		return ledger.Event{}, err
	}
	return *out, nil
}

func (s *Service) CreateTier(ctx context.Context, caller string, eventKey ledger.EventKey, in CreateTierInput) (ledger.Tier, error) {
	var out *ledger.Tier
	_, err := s.commit(ctx, "create_tier", func(ctx context.Context) (*ledger.Changeset, error) {
		event, err := s.store.GetEvent(ctx, eventKey)
		if err != nil {
			return nil, err
		}
		tier, err := ledger.NewTier(caller, event, in.TierID, in.Price, in.MaxSupply)
		if err != nil {
			return nil, err
		}
		cs := &ledger.Changeset{Tiers: []ledger.Tier{tier}}
		out = &cs.Tiers[0]
		return cs, nil
	})
	if err != nil {
		return ledger.Tier{}, err
	}
	return *out, nil
}

func (s *Service) SetTierActive(ctx context.Context, caller string, key ledger.TierKey, active bool) (ledger.Tier, error) {
	var out *ledger.Tier
	_, err := s.commit(ctx, "set_tier_active", func(ctx context.Context) (*ledger.Changeset, error) {
		event, err := s.store.GetEvent(ctx, key.Event)
		if err != nil {
			return nil, err
		}
		tier, err := s.store.GetTier(ctx, key)
		if err != nil {
			return nil, err
		}
		changed, err := tier.SetActive(caller, event, active)
		if err != nil {
			return nil, err
		}
		if !changed {
			out = &tier
			return nil, nil
		}
		cs := &ledger.Changeset{Tiers: []ledger.Tier{tier}}
		out = &cs.Tiers[0]
		return cs, nil
	})
	if err != nil {
		return ledger.Tier{}, err
	}
	return *out, nil
}

func (s *Service) Event(ctx context.Context, key ledger.EventKey) (ledger.Event, error) {
	return s.store.GetEvent(ctx, key)
}

func (s *Service) Tier(ctx context.Context, key ledger.TierKey) (ledger.Tier, error) {
	return s.store.GetTier(ctx, key)
}

// Purchases

// BuyTicketWithEscrow runs the purchase coordinator on freshly read state and
// commits its effects atomically. The authority may be any identity; see
// ledger.BuyTicketWithEscrow.
func (s *Service) BuyTicketWithEscrow(ctx context.Context, authority string, req PurchaseRequest) (PurchaseResult, error) {
	metricPurchaseTotal.Add(1)
	res, err := s.purchase(ctx, authority, req, false)
	if err != nil {
		metricPurchaseErrors.Add(1)
	}
	return res, err
}

// AutoBuyTicket is the entry point for automation. On top of the
// coordinator's checks it requires auto purchase to be enabled on the agent
// and the tier price to be within the agent's auto purchase threshold.
func (s *Service) AutoBuyTicket(ctx context.Context, authority string, req PurchaseRequest) (PurchaseResult, error) {
	metricAutoPurchaseTotal.Add(1)
	res, err := s.purchase(ctx, authority, req, true)
	if err != nil {
		metricAutoPurchaseErrors.Add(1)
	}
	return res, err
}

func (s *Service) purchase(ctx context.Context, authority string, req PurchaseRequest, auto bool) (PurchaseResult, error) {
	res, err := s.runPurchase(ctx, authority, req, auto)
	if err != nil {
		s.observer.PurchaseFailed(ctx, authority, req, auto, err)
		return PurchaseResult{}, err
	}
	s.observer.PurchaseSucceeded(ctx, authority, res)
	return res, nil
}

func (s *Service) runPurchase(ctx context.Context, authority string, req PurchaseRequest, auto bool) (PurchaseResult, error) {
	if authority == "" {
		return PurchaseResult{}, fmt.Errorf("%w: authority is required", ledger.ErrInvalidInput)
	}
	var (
		cs  *ledger.Changeset
		out ledger.PurchaseOutcome
	)
	attempts, err := s.commit(ctx, "buy_ticket", func(ctx context.Context) (*ledger.Changeset, error) {
		in, err := s.loadPurchase(ctx, authority, req)
		if err != nil {
			return nil, err
		}
		if auto {
			if err := ledger.CheckAutoPurchase(in.Agent, in.Tier); err != nil {
				return nil, err
			}
		}
		out, err = ledger.BuyTicketWithEscrow(in, s.now())
		if err != nil {
			return nil, err
		}
		cs = out.Changeset()
		return cs, nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}
	return PurchaseResult{
		Ticket:           cs.Tickets[0],
		Split:            out.Split,
		TicketsPurchased: cs.Agents[0].TicketsPurchased,
		SpentBudget:      cs.Agents[0].SpentBudget,
		CurrentSupply:    cs.Tiers[0].CurrentSupply,
		EscrowBalance:    cs.Escrows[0].Balance,
		EventTickets:     cs.Tallies[0].Count,
		Auto:             auto,
		Attempts:         attempts,
	}, nil
}

func (s *Service) loadPurchase(ctx context.Context, authority string, req PurchaseRequest) (ledger.PurchaseInput, error) {
	agentKey, eventKey := req.agentKey(), req.eventKey()
	event, err := s.store.GetEvent(ctx, eventKey)
	if err != nil {
		return ledger.PurchaseInput{}, fmt.Errorf("event: %w", err)
	}
	tier, err := s.store.GetTier(ctx, ledger.TierKey{Event: eventKey, TierID: req.TierID})
	if err != nil {
		return ledger.PurchaseInput{}, fmt.Errorf("tier: %w", err)
	}
	agent, err := s.store.GetAgent(ctx, agentKey)
	if err != nil {
		return ledger.PurchaseInput{}, fmt.Errorf("agent: %w", err)
	}
	escrow, err := s.store.GetEscrow(ctx, ledger.EscrowKeyFor(agentKey))
	if err != nil {
		return ledger.PurchaseInput{}, fmt.Errorf("escrow: %w", err)
	}
	tallyKey := ledger.TallyKey{Agent: agentKey, Event: eventKey}
	tally, err := s.store.GetTally(ctx, tallyKey)
	if errors.Is(err, ledger.ErrNotFound) {
		tally, err = ledger.Tally{Agent: agentKey, Event: eventKey}, nil
	}
	if err != nil {
		return ledger.PurchaseInput{}, fmt.Errorf("tally: %w", err)
	}
	return ledger.PurchaseInput{
		TicketID:   s.newID(),
		Authority:  authority,
		TierID:     req.TierID,
		AgentOwner: req.AgentOwner,
		Organizer:  req.Organizer,
		Treasury:   s.cfg.Treasury,
		Event:      event,
		Tier:       tier,
		Agent:      agent,
		Escrow:     escrow,
		Tally:      tally,
	}, nil
}

func (s *Service) Tickets(ctx context.Context, f store.TicketFilter, limit, offset int) ([]ledger.Ticket, error) {
	return s.store.ListTickets(ctx, f, limit, offset)
}

func (s *Service) Entries(ctx context.Context, f store.EntryFilter, limit, offset int) ([]ledger.Entry, error) {
	return s.store.ListEntries(ctx, f, limit, offset)
}
