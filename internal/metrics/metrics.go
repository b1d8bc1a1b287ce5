// Package metrics declares the Prometheus instrumentation for upstream
// sources, the cache, and the scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts outbound calls by source and outcome
	// (success, client_error, server_error, transport_error, rejected).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentpair_upstream_requests_total",
			Help: "Total outbound requests to fragrance data sources",
		},
		[]string{"source", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scentpair_upstream_request_duration_seconds",
			Help:    "Duration of outbound requests to fragrance data sources",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	ScrapeRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scentpair_scrape_retries_total",
			Help: "Total retries issued to the scraping proxy after server errors",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentpair_cache_lookups_total",
			Help: "Cache lookups by namespace and result (hit, miss, expired)",
		},
		[]string{"namespace", "result"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentpair_cache_evictions_total",
			Help: "Entries evicted by the per-namespace size bound",
		},
		[]string{"namespace"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scentpair_circuit_breaker_state",
			Help: "Circuit breaker state per upstream",
		},
		[]string{"name"},
	)

	DegradedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentpair_degraded_records_total",
			Help: "Thin records served in place of a parsed detail page",
		},
		[]string{"reason"},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scentpair_match_score",
			Help:    "Distribution of final compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)
