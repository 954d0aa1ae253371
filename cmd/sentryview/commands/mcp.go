package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/netsentinel/sentryview/internal/client"
	"github.com/netsentinel/sentryview/internal/feed"
	"github.com/netsentinel/sentryview/internal/history"
	mcpserver "github.com/netsentinel/sentryview/internal/mcp"
	"github.com/netsentinel/sentryview/internal/resolver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start sentryview as an MCP server (stdio)",
		Long: `Exposes sentryview as an MCP tool server. Add to your MCP client config:

  {
    "mcpServers": {
      "sentryview": {
        "command": "sentryview",
        "args": ["mcp", "--config", "./sentryview.yaml"]
      }
    }
  }

Tools: list_alerts, get_incident, trigger_simulation, mitigate_ip`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// stdout carries the MCP protocol; keep logging quiet on stderr.
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			api := client.New(cfg.Backend.BaseURL)
			window := feed.NewWindow(cfg.Feed.Window)
			res := resolver.New(api, logger)

			var hist *history.Store
			if cfg.History.Enabled {
				hist, err = history.NewStore(cfg.History.Path, logger)
				if err != nil {
					return err
				}
				defer func() { _ = hist.Close() }()
			}

			// Keep the window populated while serving, so list_alerts
			// reflects the live feed. The server still works without a
			// feed connection, it just starts empty.
			if sub, err := feed.Subscribe(ctx, cfg.FeedURL(), logger); err == nil {
				go func() { _ = feed.Run(ctx, sub, window, nil) }()
			} else {
				logger.Error("live feed unavailable, alert window will stay empty", "error", err)
			}

			s := mcpserver.NewServer(window, res, api, hist, logger)
			return s.Run(ctx)
		},
	}
}
