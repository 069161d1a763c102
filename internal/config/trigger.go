package config

import "github.com/caarlos0/env/v11"

// TriggerConfig drives cmd/pulse-trigger, which asks the server to run one
// automatic purchase.
type TriggerConfig struct {
	ServerURL  string `env:"PULSE_URL" envDefault:"http://localhost:8080"`
	CallerID   string `env:"CALLER_ID" envDefault:"scheduler"`
	AgentOwner string `env:"AGENT_OWNER"`
	AgentID    string `env:"AGENT_ID"`
	Organizer  string `env:"ORGANIZER"`
	EventID    string `env:"EVENT_ID"`
	TierID     string `env:"TIER_ID"`
	TimeoutSec int    `env:"TRIGGER_TIMEOUT_SEC" envDefault:"10"`
}

func LoadTrigger() (TriggerConfig, error) {
	var cfg TriggerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
