package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsentinel/sentryview/internal/client"
	"github.com/netsentinel/sentryview/internal/history"
)

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <portscan|udpflood>",
		Short: "Trigger a synthetic attack (digital twin mode)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			kind := args[0]

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			api := client.New(cfg.Backend.BaseURL)
			simErr := api.Simulate(ctx, kind)

			if cfg.History.Enabled {
				recordAction(cfg.History.Path, logger, history.Entry{
					Action: history.ActionSimulate,
					Target: kind,
				}, simErr)
			}

			if simErr != nil {
				return fmt.Errorf("triggering simulation: %w", simErr)
			}
			fmt.Printf("Simulation %s triggered. Watch the live feed for resulting alerts.\n", kind)
			return nil
		},
	}
}
