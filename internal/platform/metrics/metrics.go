// Package metrics exposes Prometheus collectors for the story engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Transitions counts choice transitions by outcome.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradecraft_transitions_total",
		Help: "Choice transitions processed, labelled by outcome.",
	}, []string{"outcome"})

	// GenerationAttempts counts calls to the narrative generation provider.
	GenerationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradecraft_generation_attempts_total",
		Help: "Narrative generation attempts, labelled by result.",
	}, []string{"result"})

	// GenerationDuration observes generation call latency.
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tradecraft_generation_duration_seconds",
		Help:    "Latency of narrative generation calls.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})

	// DigestTruncations counts context digests that hit the size budget.
	DigestTruncations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradecraft_digest_truncations_total",
		Help: "Context digests that omitted ancestors due to the size budget.",
	})
)

// Outcome labels for Transitions.
const (
	OutcomeCommitted    = "committed"
	OutcomeReplayed     = "replayed"
	OutcomeRejected     = "rejected"
	OutcomeFailed       = "failed"
	OutcomeConflicted   = "conflicted"
	OutcomeInsufficient = "insufficient_funds"
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
