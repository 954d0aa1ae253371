package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/netsentinel/sentryview/internal/safefile"
)

// Config files larger than this are rejected as corrupt or hostile.
const maxConfigBytes = 1 << 20

// Config is the top-level sentryview configuration.
type Config struct {
	Version  string        `yaml:"version"`
	Backend  BackendConfig `yaml:"backend"`
	Feed     FeedConfig    `yaml:"feed"`
	History  HistoryConfig `yaml:"history"`
	Bridge   BridgeConfig  `yaml:"bridge"`
	Trace    TraceConfig   `yaml:"trace"`
	LogLevel string        `yaml:"log_level"`
}

// BackendConfig points at the NetSentinel backend. All HTTP and WebSocket
// requests target this single base address; no auth, retry, or backoff.
type BackendConfig struct {
	BaseURL  string `yaml:"base_url"`
	FeedPath string `yaml:"feed_path"` // WebSocket path on the same host
}

// FeedConfig controls the live alert window.
type FeedConfig struct {
	Window int `yaml:"window"` // bounded recent-alert list size
}

// HistoryConfig configures the local operator-action trail.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// BridgeConfig configures the alert re-publisher daemon.
type BridgeConfig struct {
	RedisAddr   string `yaml:"redis_addr"`
	Channel     string `yaml:"channel"`
	MetricsBind string `yaml:"metrics_bind"` // empty disables the /metrics listener
}

// TraceConfig enables OpenTelemetry tracing of backend calls.
type TraceConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses a sentryview config file.
func Load(path string) (*Config, error) {
	data, err := safefile.ReadFileMax(path, maxConfigBytes)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply zero-value defaults after unmarshal
	if cfg.Feed.Window == 0 {
		cfg.Feed.Window = 10
	}
	if cfg.Backend.FeedPath == "" {
		cfg.Backend.FeedPath = "/ws/live"
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Version: "1",
		Backend: BackendConfig{
			BaseURL:  "http://127.0.0.1:8000",
			FeedPath: "/ws/live",
		},
		Feed: FeedConfig{
			Window: 10,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "sentryview.db",
		},
		Bridge: BridgeConfig{
			Channel: "netsentinel:alerts",
		},
		LogLevel: "info",
	}
}

// Save writes the config to a YAML file at the given path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks that the config is consistent.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend.base_url must be http or https: %q", c.Backend.BaseURL)
	}
	if !strings.HasPrefix(c.Backend.FeedPath, "/") {
		return fmt.Errorf("backend.feed_path must start with /: %q", c.Backend.FeedPath)
	}
	if c.Feed.Window < 1 {
		return fmt.Errorf("feed.window must be at least 1: %d", c.Feed.Window)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

// FeedURL derives the WebSocket endpoint from the backend base address.
func (c *Config) FeedURL() string {
	url := c.Backend.BaseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return strings.TrimSuffix(url, "/") + c.Backend.FeedPath
}
