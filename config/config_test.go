package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected API base URL %q", cfg.APIBaseURL)
	}
	if cfg.WebsocketURL != "ws://localhost:8000/ws" {
		t.Fatalf("unexpected websocket URL %q", cfg.WebsocketURL)
	}
	if cfg.ReconnectMinDelay != time.Second || cfg.ReconnectMaxDelay != 30*time.Second {
		t.Fatalf("unexpected backoff bounds %v %v", cfg.ReconnectMinDelay, cfg.ReconnectMaxDelay)
	}
	if cfg.TokenPath == "" {
		t.Fatalf("token path must have a default")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("RECONNECT_MAX_DELAY", "2m")
	t.Setenv("SIMULATOR_JWT_EXPIRY_MIN", "15")

	cfg := LoadConfig()

	if cfg.APIBaseURL != "https://api.example.com" {
		t.Fatalf("env override ignored, got %q", cfg.APIBaseURL)
	}
	if cfg.ReconnectMaxDelay != 2*time.Minute {
		t.Fatalf("duration parse failed, got %v", cfg.ReconnectMaxDelay)
	}
	if cfg.SimulatorJWTExpiry != 15 {
		t.Fatalf("int parse failed, got %d", cfg.SimulatorJWTExpiry)
	}
}
