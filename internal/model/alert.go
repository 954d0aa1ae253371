// Package model defines the alert and incident records exchanged with the
// NetSentinel backend, plus the shape validation applied at the stream
// boundary.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// UnknownIP is the sentinel the backend (and degraded placeholders) use when
// an attacker address has not been resolved.
const UnknownIP = "Unknown"

// SequenceItem is one sub-event in an incident's timeline. Order is
// chronological as delivered; the client never re-sorts it.
type SequenceItem struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Details   string `json:"details"`
}

// AlertSummary is one security event pushed over the live feed.
type AlertSummary struct {
	IncidentID  string         `json:"incident_id"`
	ThreatScore float64        `json:"threat_score"`
	MainEvent   string         `json:"main_event"`
	Status      string         `json:"status"`
	Sequence    []SequenceItem `json:"sequence"`
	AISummary   string         `json:"ai_summary"`
}

// FullIncident is the complete incident record behind a summary.
// Timestamps are epoch milliseconds.
type FullIncident struct {
	AlertSummary
	FirstSeen  int64  `json:"first_seen"`
	LastSeen   int64  `json:"last_seen"`
	AttackerIP string `json:"attacker_ip"`
	AIPlaybook string `json:"ai_playbook,omitempty"`
}

// Validation errors returned by ParseAlert.
var (
	ErrMalformed      = errors.New("malformed alert message")
	ErrMissingID      = errors.New("alert missing incident_id")
	ErrBadThreatScore = errors.New("alert threat_score is not numeric")
)

// ParseAlert decodes and shape-checks one feed message. A summary is valid
// only if it carries a non-empty incident_id and a numeric threat_score;
// anything else is rejected so the caller can discard it without closing
// the stream.
func ParseAlert(data []byte) (AlertSummary, error) {
	// Decode threat_score as raw JSON first so a string or null score is a
	// rejection, not a zero value.
	var probe struct {
		IncidentID  string          `json:"incident_id"`
		ThreatScore json.RawMessage `json:"threat_score"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return AlertSummary{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if probe.IncidentID == "" {
		return AlertSummary{}, ErrMissingID
	}
	var score float64
	if len(probe.ThreatScore) == 0 || json.Unmarshal(probe.ThreatScore, &score) != nil {
		return AlertSummary{}, ErrBadThreatScore
	}

	var alert AlertSummary
	if err := json.Unmarshal(data, &alert); err != nil {
		return AlertSummary{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return alert, nil
}

// Placeholder synthesizes a degraded FullIncident from a summary when the
// detail fetch fails. first_seen/last_seen are set to now and the attacker
// address to the Unknown sentinel, so the detail view always has something
// to render.
func Placeholder(summary AlertSummary, now time.Time) FullIncident {
	ms := now.UnixMilli()
	return FullIncident{
		AlertSummary: summary,
		FirstSeen:    ms,
		LastSeen:     ms,
		AttackerIP:   UnknownIP,
	}
}

// Severity buckets a threat score for display.
func Severity(score float64) string {
	switch {
	case score >= 90:
		return "critical"
	case score >= 70:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}

// FormatEpochMilli renders a backend epoch-millisecond timestamp for display.
// Zero renders as a dash so placeholder gaps are visible.
func FormatEpochMilli(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
