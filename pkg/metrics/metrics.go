// Package metrics provides Prometheus metrics for the duplicate checker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome values for SearchesTotal.
const (
	OutcomeFound    = "found"
	OutcomeEmpty    = "empty"
	OutcomeSkipped  = "skipped"
	OutcomeDegraded = "degraded"
)

var (
	// SearchesTotal tracks searches by operation and outcome.
	// degraded counts retrieval failures answered with an empty list.
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dedup",
			Subsystem: "search",
			Name:      "total",
			Help:      "Total number of duplicate searches by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// RetrievalDuration tracks candidate retrieval round trips in seconds.
	RetrievalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dedup",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Duration of candidate retrieval queries in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"strategy"},
	)

	// CandidatesReturned tracks how many candidates each search returns.
	CandidatesReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dedup",
			Subsystem: "search",
			Name:      "candidates_returned",
			Help:      "Number of candidates returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"operation"},
	)
)

// Operation label values.
const (
	OperationSearch     = "search"
	OperationExactPhone = "exact_phone"
)
