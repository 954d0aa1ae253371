package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsentinel/sentryview/internal/client"
	"github.com/netsentinel/sentryview/internal/history"
)

func newMitigateCmd() *cobra.Command {
	var incidentID string

	cmd := &cobra.Command{
		Use:   "mitigate <ip>",
		Short: "Redirect an attacker IP to the honeypot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			ip := args[0]

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			api := client.New(cfg.Backend.BaseURL)
			mitErr := api.Mitigate(ctx, ip)

			if cfg.History.Enabled {
				recordAction(cfg.History.Path, logger, history.Entry{
					Action:     history.ActionMitigate,
					Target:     ip,
					IncidentID: incidentID,
				}, mitErr)
			}

			if mitErr != nil {
				return fmt.Errorf("requesting mitigation: %w", mitErr)
			}
			fmt.Printf("Mitigation requested: %s is being rerouted to the honeypot.\n", ip)
			return nil
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVar(&incidentID, "incident", "", "incident id the mitigation belongs to")
	return cmd
}

// recordAction appends one entry to the action trail. Best effort: a
// history failure never fails the command itself.
func recordAction(dbPath string, logger *slog.Logger, entry history.Entry, actionErr error) {
	store, err := history.NewStore(dbPath, logger)
	if err != nil {
		logger.Warn("opening history db failed, action not recorded", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	entry.Outcome = history.OutcomeOK
	if actionErr != nil {
		entry.Outcome = history.OutcomeFailed
		entry.Detail = actionErr.Error()
	}
	store.Record(entry)
}
