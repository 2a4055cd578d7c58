// Package metrics defines and registers all custom Prometheus metrics for
// the admin console. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default registry at package load; the router
// exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admin_console"

// ── Backend client metrics ────────────────────────────────────────────────────

// BackendRequestsTotal counts requests issued to the management backend.
// Labels:
//   - resource: first path segment ("auth", "users", "categories")
//   - method:   HTTP method
//   - outcome:  "ok", "http_<status>", or "network_error"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the management backend.",
	},
	[]string{"resource", "method", "outcome"},
)

// BackendRequestDuration measures backend round-trip latency for requests
// that produced a response.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Round-trip duration of management backend requests.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"resource", "method"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome ("success", "invalid",
// "error").
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of console login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// TokenRefreshesTotal counts backend token refreshes by outcome ("success",
// "expired", "error").
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of access-token refreshes, by outcome.",
	},
	[]string{"outcome"},
)

// ActiveSessions tracks console sessions created minus sessions destroyed.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of live console sessions.",
	},
)
