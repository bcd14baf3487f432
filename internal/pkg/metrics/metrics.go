// Package metrics defines and registers all custom Prometheus metrics for the
// drone console. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto; /metrics serves them together with the HTTP metrics
// collected by echoprometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayCallsTotal counts outgoing calls to remote services.
// Labels:
//   - service: "identity", "drones", "control", "zones", "weather"
//   - op: the gateway operation (e.g. "update_request_status")
//   - outcome: "ok", "network_error", "decode_error", "rejected"
var GatewayCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_calls_total",
		Help:      "Total number of calls made to remote services.",
	},
	[]string{"service", "op", "outcome"},
)

// GatewayCallDuration measures remote call latency including body decoding.
var GatewayCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_call_duration_seconds",
		Help:      "Duration of calls made to remote services.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"service", "op"},
)

// ── Monitor metrics ───────────────────────────────────────────────────────────

// MonitorPollsTotal counts live monitor poll cycles.
// Label:
//   - result: "updated", "partial" (one sub-fetch failed), "failed"
var MonitorPollsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "monitor_polls_total",
		Help:      "Total number of live monitor poll cycles, by result.",
	},
	[]string{"result"},
)

// MonitorStaleResultsTotal counts results discarded because a newer request
// had already been applied or the monitor was stopped.
var MonitorStaleResultsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "monitor_stale_results_total",
		Help:      "Total number of monitor results dropped as stale.",
	},
	[]string{"reason"},
)

// MonitorsActive tracks the number of monitors currently polling.
var MonitorsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "monitors_active",
		Help:      "Number of live and fleet monitors currently polling.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionEventsTotal counts session lifecycle events.
// Label:
//   - event: "login", "logout", "login_failed", "restored"
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session lifecycle events.",
	},
	[]string{"event"},
)

// ObserveGatewayCall records one remote call.
func ObserveGatewayCall(service, op, outcome string, d time.Duration) {
	GatewayCallsTotal.WithLabelValues(service, op, outcome).Inc()
	GatewayCallDuration.WithLabelValues(service, op).Observe(d.Seconds())
}
