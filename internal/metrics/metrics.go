// Package metrics exposes Prometheus collectors for the impact service.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream call outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeBadStatus = "bad_status"
	OutcomeBadFormat = "bad_format"
	OutcomeError     = "error"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "impact",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "impact",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "impact",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "path"},
	)

	upstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "impact",
			Subsystem: "pan",
			Name:      "calls_total",
			Help:      "Total number of calls made to the PAN API.",
		},
		[]string{"operation", "outcome"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "impact",
			Subsystem: "pan",
			Name:      "call_duration_seconds",
			Help:      "Duration of PAN API calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"operation"},
	)

	commissionRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "impact",
			Subsystem: "report",
			Name:      "commission_rows",
			Help:      "Number of commission rows per PAN report.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	treesPlanted = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "impact",
			Subsystem: "report",
			Name:      "trees_planted",
			Help:      "Trees planted according to the most recent report.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		upstreamCalls,
		upstreamDuration,
		commissionRows,
		treesPlanted,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncInFlight marks the start of an HTTP request.
func IncInFlight() { httpInFlight.Inc() }

// DecInFlight marks the end of an HTTP request.
func DecInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	method = strings.ToUpper(method)
	if path == "" {
		path = "unmatched"
	}
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordUpstreamCall records one PAN API call.
func RecordUpstreamCall(operation, outcome string, duration time.Duration) {
	upstreamCalls.WithLabelValues(operation, outcome).Inc()
	upstreamDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordReport records the size of a fetched report and the trees derived from it.
func RecordReport(rows int, trees int64) {
	commissionRows.Observe(float64(rows))
	treesPlanted.Set(float64(trees))
}
