package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsentinel/sentryview/internal/history"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			fmt.Println()
			fmt.Println("  sentryview status")
			fmt.Println("  ────────────────────────────────────────")
			fmt.Printf("  Backend:       %s (%s)\n", cfg.Backend.BaseURL, probeBackend(cfg.Backend.BaseURL))
			fmt.Printf("  Live feed:     %s\n", cfg.FeedURL())
			fmt.Printf("  Alert window:  %d entries\n", cfg.Feed.Window)
			fmt.Printf("  Config:        %s\n", cfgFile)

			if !cfg.History.Enabled {
				fmt.Println("  History:       disabled")
				fmt.Println()
				return nil
			}

			store, err := history.NewStore(cfg.History.Path, logger)
			if err != nil {
				fmt.Printf("  History:       %s (unreadable: %v)\n", cfg.History.Path, err)
				fmt.Println()
				return nil
			}
			defer func() { _ = store.Close() }()

			entries, _ := store.Query(history.QueryOpts{Limit: 100000})
			var simulations, mitigations, failed int
			for _, e := range entries {
				switch e.Action {
				case history.ActionSimulate:
					simulations++
				case history.ActionMitigate:
					mitigations++
				}
				if e.Outcome == history.OutcomeFailed {
					failed++
				}
			}

			fmt.Println("  ────────────────────────────────────────")
			fmt.Printf("  Actions:       %d recorded\n", len(entries))
			fmt.Printf("  Simulations:   %d\n", simulations)
			fmt.Printf("  Mitigations:   %d\n", mitigations)
			fmt.Printf("  Failed:        %d\n", failed)
			fmt.Println()
			return nil
		},
	}
}

// probeBackend reports whether the backend answers HTTP at all. Any
// response counts; only a transport failure marks it unreachable.
func probeBackend(baseURL string) string {
	hc := &http.Client{Timeout: 2 * time.Second}
	resp, err := hc.Get(baseURL + "/")
	if err != nil {
		return "unreachable"
	}
	_ = resp.Body.Close()
	return "reachable"
}
