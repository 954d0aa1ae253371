package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netsentinel/sentryview/internal/client"
	"github.com/netsentinel/sentryview/internal/console"
	"github.com/netsentinel/sentryview/internal/feed"
	"github.com/netsentinel/sentryview/internal/history"
	"github.com/netsentinel/sentryview/internal/resolver"
	"github.com/netsentinel/sentryview/internal/telemetry"
)

func newConsoleCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the interactive alert console",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if backend != "" {
				cfg.Backend.BaseURL = backend
			}

			// The TUI owns the terminal, so logs go to a file.
			logger, closeLog := newFileLogger(cfg)
			defer closeLog()

			ctx := context.Background()

			if cfg.Trace.Enabled {
				shutdown, err := telemetry.Init(ctx)
				if err != nil {
					return fmt.Errorf("starting tracing: %w", err)
				}
				defer func() { _ = shutdown(context.Background()) }()
			}

			opts := []client.Option{}
			if cfg.Trace.Enabled {
				opts = append(opts, client.WithTracing())
			}
			api := client.New(cfg.Backend.BaseURL, opts...)

			var hist *history.Store
			if cfg.History.Enabled {
				hist, err = history.NewStore(cfg.History.Path, logger)
				if err != nil {
					return fmt.Errorf("opening history db: %w", err)
				}
				defer func() { _ = hist.Close() }()
			}

			sub, err := feed.Subscribe(ctx, cfg.FeedURL(), logger)
			if err != nil {
				return fmt.Errorf("connecting to live feed at %s: %w", cfg.FeedURL(), err)
			}

			window := feed.NewWindow(cfg.Feed.Window)
			res := resolver.New(api, logger)

			return console.Run(console.New(sub, window, res, api, hist, logger))
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "override backend base URL")
	return cmd
}
