package config

import "testing"

func TestLoadTriggerDefaults(t *testing.T) {
	cfg, err := LoadTrigger()
	if err != nil {
		t.Fatalf("LoadTrigger() error = %v", err)
	}
	if cfg.ServerURL != "http://localhost:8080" {
		t.Fatalf("ServerURL = %q, want http://localhost:8080", cfg.ServerURL)
	}
	if cfg.CallerID != "scheduler" {
		t.Fatalf("CallerID = %q, want scheduler", cfg.CallerID)
	}
}

func TestLoadTriggerOverrides(t *testing.T) {
	t.Setenv("PULSE_URL", "http://127.0.0.1:9000")
	t.Setenv("AGENT_OWNER", "alice")
	t.Setenv("AGENT_ID", "bot-1")
	t.Setenv("TIER_ID", "ga")

	cfg, err := LoadTrigger()
	if err != nil {
		t.Fatalf("LoadTrigger() error = %v", err)
	}
	if cfg.ServerURL != "http://127.0.0.1:9000" {
		t.Fatalf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.AgentOwner != "alice" || cfg.AgentID != "bot-1" || cfg.TierID != "ga" {
		t.Fatalf("unexpected trigger config: %+v", cfg)
	}
}
