package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8082" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if cfg.GatewayURL != "" {
		t.Errorf("gateway url should default empty, got %q", cfg.GatewayURL)
	}
	if cfg.ReplayDelay != time.Second {
		t.Errorf("replay delay: got %s", cfg.ReplayDelay)
	}
	if cfg.RetentionAge != 30*24*time.Hour {
		t.Errorf("retention age: got %s", cfg.RetentionAge)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GATEWAY_URL", "http://backend:8080")
	t.Setenv("SETTLE_DELAY", "500ms")
	t.Setenv("PROBE_INTERVAL", "30") // bare number reads as seconds

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if cfg.GatewayURL != "http://backend:8080" {
		t.Errorf("gateway url: got %q", cfg.GatewayURL)
	}
	if cfg.SettleDelay != 500*time.Millisecond {
		t.Errorf("settle delay: got %s", cfg.SettleDelay)
	}
	if cfg.ProbeInterval != 30*time.Second {
		t.Errorf("probe interval: got %s", cfg.ProbeInterval)
	}
}

func TestLoadMalformedDurationFallsBack(t *testing.T) {
	t.Setenv("REPLAY_DELAY", "soon")

	cfg := Load()
	if cfg.ReplayDelay != time.Second {
		t.Errorf("replay delay: got %s, want fallback", cfg.ReplayDelay)
	}
}
