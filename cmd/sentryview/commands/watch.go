package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/netsentinel/sentryview/internal/feed"
	"github.com/netsentinel/sentryview/internal/model"
)

func newWatchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live alerts to stdout (non-interactive)",
		Example: `  sentryview watch
  sentryview watch --json | jq .incident_id`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			if !term.IsTerminal(int(os.Stdout.Fd())) {
				color.NoColor = true
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sub, err := feed.Subscribe(ctx, cfg.FeedURL(), logger)
			if err != nil {
				return fmt.Errorf("connecting to live feed at %s: %w", cfg.FeedURL(), err)
			}
			defer sub.Close()

			if !asJSON {
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "TIME\tSCORE\tINCIDENT\tEVENT\tSTATUS\n") //nolint:errcheck // CLI output
				_ = tw.Flush()
			}

			for {
				select {
				case <-ctx.Done():
					fmt.Println("\nStopped.")
					return nil
				case alert, ok := <-sub.Alerts():
					if !ok {
						if err := sub.Err(); err != nil {
							return fmt.Errorf("live feed closed: %w", err)
						}
						fmt.Println("Feed closed by backend.")
						return nil
					}
					if asJSON {
						data, err := json.Marshal(alert)
						if err != nil {
							continue
						}
						fmt.Println(string(data))
						continue
					}
					printAlertLine(alert)
				}
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit one JSON object per alert")
	return cmd
}

func printAlertLine(alert model.AlertSummary) {
	score := fmt.Sprintf("%3.0f", alert.ThreatScore)
	switch model.Severity(alert.ThreatScore) {
	case "critical":
		score = color.New(color.FgRed, color.Bold).Sprint(score)
	case "high":
		score = color.New(color.FgRed).Sprint(score)
	case "medium":
		score = color.New(color.FgYellow).Sprint(score)
	default:
		score = color.New(color.FgGreen).Sprint(score)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", //nolint:errcheck // CLI output
		time.Now().Format("15:04:05"), score, alert.IncidentID, alert.MainEvent, alert.Status)
	_ = tw.Flush()
}
