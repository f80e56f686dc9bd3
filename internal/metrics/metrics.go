// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voice_agent"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	fabricRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fabric_requests_total",
			Help:      "Total number of vendor REST API calls.",
		},
		[]string{"operation", "outcome"},
	)
	fabricRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fabric_request_duration_seconds",
			Help:      "Vendor REST API call duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)
	swaigInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swaig_invocations_total",
			Help:      "Total number of SWAIG function invocations.",
		},
		[]string{"function", "outcome"},
	)
	guestTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guest_tokens_total",
			Help:      "Guest token requests by outcome.",
		},
		[]string{"outcome"},
	)
	registrationReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registration_ready",
			Help:      "1 when the call handler is registered with a dialable address.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		fabricRequestsTotal,
		fabricRequestDuration,
		swaigInvocationsTotal,
		guestTokensTotal,
		registrationReady,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func ObserveFabricCall(operation string, d time.Duration, err error) {
	fabricRequestsTotal.WithLabelValues(operation, outcome(err)).Inc()
	fabricRequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func ObserveToolInvocation(function string, err error) {
	swaigInvocationsTotal.WithLabelValues(function, outcome(err)).Inc()
}

// ObserveGuestToken records a token request; outcome is "issued",
// "not_configured" or "error".
func ObserveGuestToken(outcome string) {
	guestTokensTotal.WithLabelValues(outcome).Inc()
}

func SetRegistrationReady(ready bool) {
	if ready {
		registrationReady.Set(1)
		return
	}
	registrationReady.Set(0)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
