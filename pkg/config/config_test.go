package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
environment: test
broker:
  websocket_url: wss://example.com/md
  symbols: [MNQ, MES]
  reconnect_delay: 3s
poller:
  interval: 10s
kafka:
  brokers: [localhost:9092]
  signals_topic: signals
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "test" {
		t.Fatalf("environment = %q", cfg.Environment)
	}
	if len(cfg.Broker.Symbols) != 2 {
		t.Fatalf("symbols = %v", cfg.Broker.Symbols)
	}
	if cfg.PollInterval() != 10*time.Second {
		t.Fatalf("poll interval = %v", cfg.PollInterval())
	}
}

func TestPollIntervalDefault(t *testing.T) {
	var c Config
	if c.PollInterval() != 30*time.Second {
		t.Fatalf("default poll interval = %v, want 30s", c.PollInterval())
	}
}

func TestValidateMissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no environment", `
broker: {websocket_url: "wss://x", symbols: [A]}
kafka: {brokers: [b], signals_topic: t}`},
		{"no ws url", `
environment: test
broker: {symbols: [A]}
kafka: {brokers: [b], signals_topic: t}`},
		{"no symbols", `
environment: test
broker: {websocket_url: "wss://x"}
kafka: {brokers: [b], signals_topic: t}`},
		{"no kafka brokers", `
environment: test
broker: {websocket_url: "wss://x", symbols: [A]}
kafka: {signals_topic: t}`},
	}
	for _, tc := range cases {
		if _, err := Load(writeConfig(t, tc.body)); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BROKER_API_KEY", "k-123")
	t.Setenv("SYMBOLS", "AAA,BBB,CCC")

	cfg, err := LoadWithEnv(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Broker.APIKey != "k-123" {
		t.Fatalf("api key = %q", cfg.Broker.APIKey)
	}
	if len(cfg.Broker.Symbols) != 3 || cfg.Broker.Symbols[2] != "CCC" {
		t.Fatalf("symbols = %v", cfg.Broker.Symbols)
	}
}
