// Package metrics defines Prometheus metrics for the access-control core.
//
// Metrics are registered with the default Prometheus registry and served on
// /metrics by the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LoginAttemptsTotal counts login attempts by outcome.
	LoginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eros_login_attempts_total",
			Help: "Total login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// SessionDecodesTotal counts session token checks by outcome.
	SessionDecodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eros_session_decodes_total",
			Help: "Total session token checks by outcome.",
		},
		[]string{"outcome"},
	)

	// SessionRefreshesTotal counts sliding refreshes.
	SessionRefreshesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eros_session_refreshes_total",
			Help: "Total session tokens re-issued on activity.",
		},
	)

	// LogoutsTotal counts logouts.
	LogoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eros_logouts_total",
			Help: "Total logouts.",
		},
	)

	// RouteDecisionsTotal counts route gate verdicts.
	RouteDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eros_route_decisions_total",
			Help: "Total route gate decisions by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		LoginAttemptsTotal,
		SessionDecodesTotal,
		SessionRefreshesTotal,
		LogoutsTotal,
		RouteDecisionsTotal,
	)
}

// RecordLogin increments the login counter. outcome is "success" or a failure kind.
func RecordLogin(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordSessionDecode increments the decode counter.
func RecordSessionDecode(outcome string) {
	SessionDecodesTotal.WithLabelValues(outcome).Inc()
}

// RecordRefresh increments the refresh counter.
func RecordRefresh() {
	SessionRefreshesTotal.Inc()
}

// RecordLogout increments the logout counter.
func RecordLogout() {
	LogoutsTotal.Inc()
}

// RecordRouteDecision increments the route decision counter.
func RecordRouteDecision(outcome string) {
	RouteDecisionsTotal.WithLabelValues(outcome).Inc()
}
