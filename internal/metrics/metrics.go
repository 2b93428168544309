// Package metrics exposes Prometheus instrumentation for the record
// store, upstream fetches, and the HTTP layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheLookups counts record-store lookups by outcome (hit/miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scoutdesk",
		Name:      "cache_lookups_total",
		Help:      "Record store lookups by outcome.",
	}, []string{"outcome"})

	// UpstreamFetches counts upstream player fetches by outcome
	// (success, or the fetch-error cause).
	UpstreamFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scoutdesk",
		Name:      "upstream_fetches_total",
		Help:      "Upstream player fetches by outcome.",
	}, []string{"outcome"})

	// UpstreamLatency observes upstream fetch latency.
	UpstreamLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scoutdesk",
		Name:      "upstream_fetch_seconds",
		Help:      "Upstream player fetch latency.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTPRequests counts API requests by route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scoutdesk",
		Name:      "http_requests_total",
		Help:      "API requests by route and status class.",
	}, []string{"route", "status"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
