package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/netsentinel/sentryview/internal/config"
)

var cfgFile string

func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "sentryview",
		Short: "Terminal console for NetSentinel live security alerts",
		Long:  "SentryView — live alert feed, incident drill-down, and response triggers for the NetSentinel backend. Single binary.",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "sentryview.yaml", "config file path")

	root.AddCommand(
		newConsoleCmd(),
		newWatchCmd(),
		newIncidentCmd(),
		newSimulateCmd(),
		newMitigateCmd(),
		newBridgeCmd(),
		newMCPCmd(),
		newHistoryCmd(),
		newInitCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads the config file, falling back to defaults when it is
// absent, and validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		// Fall back to defaults if no config file
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func logLevel(cfg *config.Config) slog.Level {
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg)}))
}

// newFileLogger logs to sentryview.log instead of stderr, for commands that
// own the terminal (the TUI console). Falls back to a silent logger when the
// file cannot be opened.
func newFileLogger(cfg *config.Config) (*slog.Logger, func()) {
	f, err := os.OpenFile("sentryview.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel(cfg)}))
	return logger, func() { _ = f.Close() }
}
