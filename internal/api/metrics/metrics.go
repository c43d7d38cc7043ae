// Package metrics defines and registers all custom Prometheus metrics for
// the POS terminal gateway. It is the single source of truth for metric
// names, labels, and help strings. Metrics register with the default
// registry at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pos_terminal"

// ── Backend transport metrics ─────────────────────────────────────────────────

// BackendRequestsTotal counts completed round trips to the remote POS API.
// Labels:
//   - method: HTTP method
//   - status: final HTTP status code (after any replay)
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the POS backend.",
	},
	[]string{"method", "status"},
)

// BackendRetriesTotal counts requests replayed after a 401 triggered the
// refresh path.
var BackendRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_retries_total",
		Help:      "Total number of requests replayed after a token refresh.",
	},
)

// TokenRefreshesTotal counts refresh attempts by outcome.
// Label:
//   - result: "success" or "failure"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of token refresh calls, by result.",
	},
	[]string{"result"},
)

// ── Store metrics ─────────────────────────────────────────────────────────────

// CartOperationsTotal counts cart mutations accepted by the gateway.
// Label:
//   - op: "add", "update", "remove", "clear"
var CartOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Total number of cart mutations, by operation.",
	},
	[]string{"op"},
)

// ReportLoadsTotal counts report refetches by scope and outcome.
// Labels:
//   - scope: "admin" (three-way fetch) or "propio"
//   - result: "success" or "failure"
var ReportLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_loads_total",
		Help:      "Total number of report load operations, by scope and result.",
	},
	[]string{"scope", "result"},
)
