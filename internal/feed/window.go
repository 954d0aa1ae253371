package feed

import (
	"sync"

	"github.com/netsentinel/sentryview/internal/metrics"
	"github.com/netsentinel/sentryview/internal/model"
)

// Window is the bounded list of recently received alert summaries,
// most-recent-first. Insertion only prepends and truncates; existing
// entries are never reordered. Entries leave only by falling off the end.
type Window struct {
	mu     sync.Mutex
	max    int
	alerts []model.AlertSummary
}

// NewWindow creates a window holding at most max summaries.
func NewWindow(max int) *Window {
	if max < 1 {
		max = 1
	}
	return &Window{max: max}
}

// Push prepends a summary and drops anything beyond the window bound.
func (w *Window) Push(alert model.AlertSummary) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.alerts = append([]model.AlertSummary{alert}, w.alerts...)
	if len(w.alerts) > w.max {
		evicted := len(w.alerts) - w.max
		w.alerts = w.alerts[:w.max]
		metrics.FeedEvicted.Add(float64(evicted))
	}
}

// Snapshot returns a copy of the current window, most-recent-first.
func (w *Window) Snapshot() []model.AlertSummary {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]model.AlertSummary, len(w.alerts))
	copy(out, w.alerts)
	return out
}

// Len returns the number of summaries currently held.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.alerts)
}
