package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	content := `
version: "1"
backend:
  base_url: http://sentinel.internal:8000
feed:
  window: 25
history:
  enabled: false
log_level: debug
`
	dir := t.TempDir()
	path := filepath.Join(dir, "sentryview.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Backend.BaseURL != "http://sentinel.internal:8000" {
		t.Errorf("base_url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.FeedPath != "/ws/live" {
		t.Errorf("feed_path = %q, want default /ws/live", cfg.Backend.FeedPath)
	}
	if cfg.Feed.Window != 25 {
		t.Errorf("window = %d, want 25", cfg.Feed.Window)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want debug", cfg.LogLevel)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Feed.Window != 10 {
		t.Errorf("default window = %d, want 10", cfg.Feed.Window)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("default base_url = %q", cfg.Backend.BaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate_BadBaseURL(t *testing.T) {
	cfg := Defaults()
	cfg.Backend.BaseURL = "ftp://example.com"
	if err := cfg.Validate(); err == nil {
		t.Error("non-http base_url should be invalid")
	}
}

func TestValidate_BadWindow(t *testing.T) {
	cfg := Defaults()
	cfg.Feed.Window = 0
	if err := cfg.Validate(); err == nil {
		t.Error("window 0 should be invalid")
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log level should be invalid")
	}
}

func TestFeedURL(t *testing.T) {
	cases := []struct {
		base, path, want string
	}{
		{"http://127.0.0.1:8000", "/ws/live", "ws://127.0.0.1:8000/ws/live"},
		{"https://sentinel.example.com", "/ws/live", "wss://sentinel.example.com/ws/live"},
		{"http://host:8000/", "/ws/live", "ws://host:8000/ws/live"},
	}
	for _, tc := range cases {
		cfg := Defaults()
		cfg.Backend.BaseURL = tc.base
		cfg.Backend.FeedPath = tc.path
		if got := cfg.FeedURL(); got != tc.want {
			t.Errorf("FeedURL(%q) = %q, want %q", tc.base, got, tc.want)
		}
	}
}
