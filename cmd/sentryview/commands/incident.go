package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsentinel/sentryview/internal/client"
	"github.com/netsentinel/sentryview/internal/model"
)

func newIncidentCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "incident <id>",
		Short: "Fetch the full record for an incident",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			api := client.New(cfg.Backend.BaseURL)
			inc, err := api.Incident(ctx, args[0])
			if err != nil {
				return fmt.Errorf("fetching incident: %w", err)
			}

			if asJSON {
				data, err := json.MarshalIndent(inc, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			printIncident(inc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the raw incident record as JSON")
	return cmd
}

func printIncident(inc *model.FullIncident) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Incident:\t%s\n", inc.IncidentID)          //nolint:errcheck // CLI output
	fmt.Fprintf(tw, "Event:\t%s\n", inc.MainEvent)              //nolint:errcheck
	fmt.Fprintf(tw, "Status:\t%s\n", inc.Status)                //nolint:errcheck
	fmt.Fprintf(tw, "Threat:\t%.0f/100 (%s)\n", inc.ThreatScore, model.Severity(inc.ThreatScore)) //nolint:errcheck
	fmt.Fprintf(tw, "Attacker:\t%s\n", inc.AttackerIP)          //nolint:errcheck
	fmt.Fprintf(tw, "First seen:\t%s\n", model.FormatEpochMilli(inc.FirstSeen)) //nolint:errcheck
	fmt.Fprintf(tw, "Last seen:\t%s\n", model.FormatEpochMilli(inc.LastSeen))   //nolint:errcheck
	_ = tw.Flush()

	if len(inc.Sequence) > 0 {
		fmt.Println("\nTimeline:")
		for _, item := range inc.Sequence {
			fmt.Printf("  %s  %s — %s\n", item.Timestamp, item.Type, item.Details)
		}
	}
	if inc.AISummary != "" {
		fmt.Println("\nAnalyst report:")
		fmt.Println(inc.AISummary)
	}
	if inc.AIPlaybook != "" {
		fmt.Println("\nResponse playbook:")
		fmt.Println(inc.AIPlaybook)
	}
}
