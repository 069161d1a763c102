package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// TreasuryID receives the protocol share of every sale.
	TreasuryID string `env:"TREASURY_ID,required,notEmpty"`

	CommitMaxRetries     int `env:"COMMIT_MAX_RETRIES" envDefault:"5"`
	CommitRetryInitialMS int `env:"COMMIT_RETRY_INITIAL_MS" envDefault:"5"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c ServerConfig) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORE_DRIVER=postgres")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.CommitMaxRetries < 0 {
		return errors.New("COMMIT_MAX_RETRIES must not be negative")
	}
	if c.CommitRetryInitialMS <= 0 {
		return errors.New("COMMIT_RETRY_INITIAL_MS must be positive")
	}
	return nil
}

func (c ServerConfig) CommitRetryInitial() time.Duration {
	return time.Duration(c.CommitRetryInitialMS) * time.Millisecond
}
