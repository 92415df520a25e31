// Package metrics provides Prometheus metrics for workflow-hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcome labels.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

var (
	// SearchTotal counts searches by transport and outcome.
	SearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workflowhub",
			Name:      "search_total",
			Help:      "Total number of search requests",
		},
		[]string{"transport", "status"},
	)

	// SearchDuration measures end-to-end search latency.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "workflowhub",
			Name:      "search_duration_seconds",
			Help:      "Duration of search requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"transport"},
	)

	// SearchResults observes how many results each successful search returned.
	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "workflowhub",
			Name:      "search_results",
			Help:      "Distribution of result counts per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	// AnalyticsDropped counts search events dropped because the queue was full.
	AnalyticsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "workflowhub",
			Name:      "analytics_dropped_total",
			Help:      "Search analytics events dropped on a full queue",
		},
	)
)

// RecordSearch records one search request.
func RecordSearch(transport, status string, duration float64, results int) {
	SearchTotal.WithLabelValues(transport, status).Inc()
	SearchDuration.WithLabelValues(transport).Observe(duration)
	if status == StatusOK {
		SearchResults.Observe(float64(results))
	}
}

// RecordAnalyticsDropped records a dropped analytics event.
func RecordAnalyticsDropped() {
	AnalyticsDropped.Inc()
}
