// Package metrics exposes Prometheus counters for the live feed and
// operator actions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FeedMessages counts inbound stream messages by disposition:
	// accepted or rejected.
	FeedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentryview",
		Subsystem: "feed",
		Name:      "messages_total",
		Help:      "Inbound live-feed messages by disposition.",
	}, []string{"disposition"})

	// FeedEvicted counts summaries dropped off the bounded window.
	FeedEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sentryview",
		Subsystem: "feed",
		Name:      "evicted_total",
		Help:      "Alert summaries evicted from the recent window.",
	})

	// Actions counts operator-triggered backend calls by action and outcome.
	Actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentryview",
		Subsystem: "actions",
		Name:      "total",
		Help:      "Operator actions (simulate, mitigate) by outcome.",
	}, []string{"action", "outcome"})
)

// Handler returns the /metrics handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
