package config

import "github.com/caarlos0/env/v11"

// TestConfig points the Postgres-backed tests at a server. Those tests skip
// when TEST_POSTGRES_DSN is unset; each run works in its own schema.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
