// Package resolver turns a summary alert into a full incident record for
// the detail view. A failed fetch degrades to a locally synthesized
// placeholder, so selecting an alert always yields something to render.
package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/netsentinel/sentryview/internal/model"
)

// IncidentFetcher is the backend surface the resolver needs.
type IncidentFetcher interface {
	Incident(ctx context.Context, incidentID string) (*model.FullIncident, error)
}

// Resolver tracks the active incident slot. Each selection gets a
// generation tag; a resolution whose tag no longer matches the current
// selection is dropped, so a stale slow fetch cannot overwrite a newer
// selection.
type Resolver struct {
	fetcher IncidentFetcher
	logger  *slog.Logger
	now     func() time.Time

	mu         sync.Mutex
	generation uint64
	active     *model.FullIncident
}

// New creates a resolver backed by the given fetcher.
func New(fetcher IncidentFetcher, logger *slog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// Begin registers a new selection and returns its generation tag. Any
// in-flight resolution from an earlier selection is invalidated.
func (r *Resolver) Begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	return r.generation
}

// Generation returns the tag of the current selection.
func (r *Resolver) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// Resolve produces a full incident for the summary. It never fails: any
// fetch error (transport, non-2xx, malformed body) yields a degraded
// placeholder carrying the summary's fields, the Unknown attacker sentinel,
// and first/last seen set to now.
func (r *Resolver) Resolve(ctx context.Context, summary model.AlertSummary) *model.FullIncident {
	inc, err := r.fetcher.Incident(ctx, summary.IncidentID)
	if err != nil {
		r.logger.Warn("detail fetch failed, using degraded placeholder",
			"incident_id", summary.IncidentID, "error", err)
		placeholder := model.Placeholder(summary, r.now())
		return &placeholder
	}
	return inc
}

// Complete installs a resolved incident as active if its generation still
// matches the current selection. Returns false when the result is stale
// and was dropped.
func (r *Resolver) Complete(generation uint64, inc *model.FullIncident) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if generation != r.generation {
		r.logger.Debug("dropping stale incident resolution",
			"incident_id", inc.IncidentID, "generation", generation, "current", r.generation)
		return false
	}
	r.active = inc
	return true
}

// Active returns the currently open incident, or nil when no detail view
// is open.
func (r *Resolver) Active() *model.FullIncident {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Dismiss clears the active incident and invalidates in-flight
// resolutions. Idempotent.
func (r *Resolver) Dismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = nil
	r.generation++
}
