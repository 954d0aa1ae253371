package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsentinel/sentryview/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var action, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the operator action trail",
		Example: `  sentryview history
  sentryview history --action mitigate
  sentryview history --since 1h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			store, err := history.NewStore(cfg.History.Path, logger)
			if err != nil {
				return fmt.Errorf("opening history db: %w", err)
			}
			defer store.Close() //nolint:errcheck // best-effort cleanup

			var sinceTime string
			if since != "" {
				dur, err := time.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("invalid duration %q: %w", since, err)
				}
				sinceTime = time.Now().Add(-dur).UTC().Format(time.RFC3339)
			}

			entries, err := store.Query(history.QueryOpts{
				Action: action,
				Since:  sinceTime,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No recorded actions.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "TIME\tACTION\tTARGET\tINCIDENT\tOUTCOME\tDETAIL\n") //nolint:errcheck // CLI output
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", //nolint:errcheck // CLI output
					e.Timestamp, e.Action, e.Target, e.IncidentID, e.Outcome, e.Detail)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "filter by action (simulate, mitigate)")
	cmd.Flags().StringVar(&since, "since", "", "show entries since duration (e.g. 1h, 30m)")
	cmd.Flags().IntVar(&limit, "limit", 50, "max entries to return")
	return cmd
}
