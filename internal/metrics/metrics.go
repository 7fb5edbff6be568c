// Package metrics exposes Prometheus collectors for the launcher service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by launch and termination collectors.
const (
	OutcomeSuccess        = "success"
	OutcomeProcessFailure = "process_failure"
	OutcomeParseFailure   = "parse_failure"
	OutcomeMissingField   = "missing_field"
	OutcomeError          = "error"
)

// Provisioning scripts routinely take tens of seconds.
var scriptBuckets = []float64{1, 5, 10, 20, 30, 60, 120, 300}

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 120},
		},
		[]string{"method", "route"},
	)

	launchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launcher_launches_total",
			Help: "Total number of provisioning runs, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	launchDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "launcher_launch_duration_seconds",
			Help:    "Wall-clock duration of the provisioning script.",
			Buckets: scriptBuckets,
		},
	)

	terminationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launcher_terminations_total",
			Help: "Total number of background teardown runs, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	terminationDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "launcher_termination_duration_seconds",
			Help:    "Wall-clock duration of the teardown script.",
			Buckets: scriptBuckets,
		},
	)

	terminationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "launcher_terminations_in_flight",
			Help: "Number of teardown tasks currently running in the background.",
		},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveLaunch records one provisioning run. A zero duration means the script
// never ran and is not observed in the histogram.
func ObserveLaunch(outcome string, duration time.Duration) {
	launchesTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		launchDurationSeconds.Observe(duration.Seconds())
	}
}

// ObserveTermination records one teardown run.
func ObserveTermination(outcome string, duration time.Duration) {
	terminationsTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		terminationDurationSeconds.Observe(duration.Seconds())
	}
}

// IncTerminationsInFlight increments the in-flight teardown gauge.
func IncTerminationsInFlight() {
	terminationsInFlight.Inc()
}

// DecTerminationsInFlight decrements the in-flight teardown gauge.
func DecTerminationsInFlight() {
	terminationsInFlight.Dec()
}
