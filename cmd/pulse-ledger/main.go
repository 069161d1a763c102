package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulse-ledger/internal/app/ticketing"
	"pulse-ledger/internal/config"
	"pulse-ledger/internal/logging"
	"pulse-ledger/internal/store"
	httptransport "pulse-ledger/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logCloser, err := logging.Init(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg.Server); err != nil {
		log.Error().Err(err).Msg("server stopped")
		logCloser.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.ServerConfig) error {
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := ticketing.NewService(st, ticketing.ConfigFromServer(cfg))
	if err != nil {
		return err
	}
	warnOpenAdmin(cfg)
	r := httptransport.NewRouter(svc, cfg)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Str("treasury", svc.Treasury()).Msg("http listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// warnOpenAdmin reports whether the admin routes run without a key, logging a
// warning when they do.
func warnOpenAdmin(cfg config.ServerConfig) bool {
	if cfg.AdminAPIKey != "" {
		return false
	}
	log.Warn().Strs("routes", []string{"/api/ledger", "/api/debug/vars"}).Msg("ADMIN_API_KEY is empty; admin routes are unauthenticated")
	return true
}

// openStore returns the configured backend and a function releasing it.
func openStore(ctx context.Context, cfg config.ServerConfig) (ticketing.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("memory store selected; state is lost on exit")
		st := store.NewMemory()
		return st, st.Close, nil
	case config.StoreDriverPostgres:
		st, err := store.New(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("store init: %w", err)
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
