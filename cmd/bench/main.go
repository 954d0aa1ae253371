// Command bench measures history store query latency at increasing row
// counts, to keep the action-trail CLI responsive as the log grows.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/netsentinel/sentryview/internal/history"
)

func main() {
	dir, _ := os.MkdirTemp("", "sentryview-bench-*")
	defer func() { _ = os.RemoveAll(dir) }()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := history.NewStore(filepath.Join(dir, "bench.db"), logger)
	if err != nil {
		panic(err)
	}
	defer func() { _ = store.Close() }()

	actions := []string{history.ActionSimulate, history.ActionMitigate}
	outcomes := []string{history.OutcomeOK, history.OutcomeOK, history.OutcomeOK, history.OutcomeFailed}

	scales := []int{1000, 10000, 50000, 100000, 500000}

	fmt.Println("=== ACTION LOG SCALING BENCHMARK ===")
	fmt.Println()

	written := 0
	for _, target := range scales {
		toWrite := target - written
		if toWrite <= 0 {
			continue
		}

		start := time.Now()
		batchSize := 500
		for i := 0; i < toWrite; i += batchSize {
			end := i + batchSize
			if end > toWrite {
				end = toWrite
			}
			tx, _ := store.DB().Begin()
			for j := i; j < end; j++ {
				idx := written + j
				ts := time.Now().Add(-time.Duration(idx) * time.Second).UTC().Format(time.RFC3339)
				_, _ = tx.Exec(
					`INSERT INTO action_log (id, timestamp, action, target, incident_id, outcome, detail) VALUES (?,?,?,?,?,?,?)`,
					fmt.Sprintf("e-%07d", idx), ts,
					actions[idx%2], fmt.Sprintf("203.0.113.%d", idx%250),
					fmt.Sprintf("INC-%05d", idx%1000), outcomes[idx%4], "",
				)
			}
			_ = tx.Commit()
		}
		written = target
		fmt.Printf("-- %d rows (insert took %v)\n", written, time.Since(start).Round(time.Millisecond))

		bench := func(name string, opts history.QueryOpts) {
			t0 := time.Now()
			entries, err := store.Query(opts)
			if err != nil {
				fmt.Printf("   %-28s ERROR: %v\n", name, err)
				return
			}
			fmt.Printf("   %-28s %6d rows  %v\n", name, len(entries), time.Since(t0).Round(time.Microsecond))
		}

		bench("recent (limit 50)", history.QueryOpts{})
		bench("by action", history.QueryOpts{Action: history.ActionMitigate, Limit: 100})
		bench("last hour", history.QueryOpts{
			Since: time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
			Limit: 10000,
		})
		fmt.Println()
	}
}
