// Package metrics holds the Prometheus collectors shared by the router and
// the query responder.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hio"

var (
	routerEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "events_total",
			Help:      "Storage events handled, by branch and outcome",
		},
		[]string{"branch", "outcome"},
	)

	routerDownstream = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "downstream_seconds",
			Help:      "Latency of extraction and OCR calls",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"branch"},
	)

	queryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "requests_total",
			Help:      "Query requests answered, by HTTP status",
		},
		[]string{"status"},
	)

	queryDownstream = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "downstream_seconds",
			Help:      "Latency of model invocations",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Outcome labels for RecordEvent.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

func RecordEvent(branch, outcome string) {
	routerEvents.WithLabelValues(branch, outcome).Inc()
}

func ObserveDownstream(branch string, d time.Duration) {
	routerDownstream.WithLabelValues(branch).Observe(d.Seconds())
}

func RecordQuery(status string) {
	queryRequests.WithLabelValues(status).Inc()
}

func ObserveModel(d time.Duration) {
	queryDownstream.Observe(d.Seconds())
}
