package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsentinel/sentryview/internal/model"
)

type fakeFetcher struct {
	incidents map[string]*model.FullIncident
	err       error
}

func (f *fakeFetcher) Incident(ctx context.Context, id string) (*model.FullIncident, error) {
	if f.err != nil {
		return nil, f.err
	}
	inc, ok := f.incidents[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return inc, nil
}

func newTestResolver(f *fakeFetcher) *Resolver {
	return New(f, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolve_Success(t *testing.T) {
	want := &model.FullIncident{
		AlertSummary: model.AlertSummary{IncidentID: "INC-1", MainEvent: "Scan"},
		FirstSeen:    1756100000000,
		AttackerIP:   "203.0.113.7",
	}
	r := newTestResolver(&fakeFetcher{incidents: map[string]*model.FullIncident{"INC-1": want}})

	got := r.Resolve(context.Background(), model.AlertSummary{IncidentID: "INC-1"})
	assert.Equal(t, want, got)
}

func TestResolve_DegradedPlaceholder(t *testing.T) {
	r := newTestResolver(&fakeFetcher{err: errors.New("HTTP 500")})
	fixed := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	summary := model.AlertSummary{
		IncidentID:  "X",
		ThreatScore: 88,
		MainEvent:   "Scan",
		Sequence:    []model.SequenceItem{{Type: "Anomalous Packet", Details: "d"}},
	}

	got := r.Resolve(context.Background(), summary)
	require.NotNil(t, got, "a failed fetch must still yield an incident")
	assert.Equal(t, "X", got.IncidentID)
	assert.Equal(t, "Scan", got.MainEvent)
	assert.Equal(t, summary.Sequence, got.Sequence)
	assert.Equal(t, model.UnknownIP, got.AttackerIP)
	assert.Equal(t, fixed.UnixMilli(), got.FirstSeen)
	assert.Equal(t, fixed.UnixMilli(), got.LastSeen)
}

func TestComplete_CurrentGenerationWins(t *testing.T) {
	r := newTestResolver(&fakeFetcher{})

	gen := r.Begin()
	inc := &model.FullIncident{AlertSummary: model.AlertSummary{IncidentID: "A"}}
	assert.True(t, r.Complete(gen, inc))
	require.NotNil(t, r.Active())
	assert.Equal(t, "A", r.Active().IncidentID)
}

func TestComplete_StaleResolutionDropped(t *testing.T) {
	r := newTestResolver(&fakeFetcher{})

	genA := r.Begin()
	genB := r.Begin()

	incB := &model.FullIncident{AlertSummary: model.AlertSummary{IncidentID: "B"}}
	assert.True(t, r.Complete(genB, incB))

	// A's slower fetch resolves after B was selected; it must not win.
	incA := &model.FullIncident{AlertSummary: model.AlertSummary{IncidentID: "A"}}
	assert.False(t, r.Complete(genA, incA))
	assert.Equal(t, "B", r.Active().IncidentID)
}

func TestDismiss(t *testing.T) {
	r := newTestResolver(&fakeFetcher{})

	gen := r.Begin()
	r.Complete(gen, &model.FullIncident{AlertSummary: model.AlertSummary{IncidentID: "A"}})

	r.Dismiss()
	assert.Nil(t, r.Active())

	// Dismissing twice is a no-op.
	r.Dismiss()
	assert.Nil(t, r.Active())
}

func TestDismiss_InvalidatesInFlight(t *testing.T) {
	r := newTestResolver(&fakeFetcher{})

	gen := r.Begin()
	r.Dismiss()

	late := &model.FullIncident{AlertSummary: model.AlertSummary{IncidentID: "late"}}
	assert.False(t, r.Complete(gen, late), "resolution from before dismissal must be dropped")
	assert.Nil(t, r.Active())
}
