// Command pulse-trigger asks a pulse-ledger server to run one automatic
// purchase for an agent. It is meant to be invoked by a scheduler.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"pulse-ledger/internal/app/ticketing"
	"pulse-ledger/internal/config"
	"pulse-ledger/internal/ledger"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// rejectedError is an error answer from the server. Only conflict is retried.
type rejectedError struct {
	Status int
	Code   string
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("purchase rejected: %d %s", e.Status, e.Code)
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.LoadTrigger()
	if err != nil {
		log.Fatal().Err(err).Msg("load trigger config failed")
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := trigger(ctx, &http.Client{Timeout: timeout}, cfg)
	if err != nil {
		var rej *rejectedError
		if errors.As(err, &rej) {
			log.Warn().Int("status", rej.Status).Str("code", rej.Code).Msg("auto purchase rejected")
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("auto purchase failed")
	}
	log.Info().
		Str("ticket_id", res.Ticket.ID).
		Uint64("price", res.Ticket.Price).
		Uint64("escrow_balance", res.EscrowBalance).
		Uint64("current_supply", res.CurrentSupply).
		Msg("auto purchase completed")
}

// trigger posts one auto-purchase request. Network failures, 5xx responses
// and commit conflicts are retried until ctx expires.
func trigger(ctx context.Context, client *http.Client, cfg config.TriggerConfig) (ticketing.PurchaseResult, error) {
	body, err := json.Marshal(ticketing.PurchaseRequest{
		AgentOwner: cfg.AgentOwner,
		AgentID:    cfg.AgentID,
		Organizer:  cfg.Organizer,
		EventID:    cfg.EventID,
		TierID:     cfg.TierID,
	})
	if err != nil {
		return ticketing.PurchaseResult{}, err
	}
	url := strings.TrimRight(cfg.ServerURL, "/") + "/api/purchases/auto"

	var res ticketing.PurchaseResult
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Caller-ID", cfg.CallerID)
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode == http.StatusCreated:
			if err := json.Unmarshal(data, &res); err != nil {
				return backoff.Permanent(fmt.Errorf("decode result: %w", err))
			}
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("server error %d", resp.StatusCode)
		default:
			var e struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(data, &e)
			rej := &rejectedError{Status: resp.StatusCode, Code: e.Error}
			if e.Error == ledger.ErrConflict.Error() {
				return rej
			}
			return backoff.Permanent(rej)
		}
	}
	notify := func(err error, next time.Duration) {
		log.Debug().Err(err).Dur("next_retry_in", next).Msg("trigger retry")
	}
	err = backoff.RetryNotify(operation, backoff.WithContext(backoff.NewExponentialBackOff(), ctx), notify)
	return res, err
}
