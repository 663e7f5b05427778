// Package metrics defines and registers the custom Prometheus metrics of the
// user directory API. Metrics are registered on the default registry through
// promauto when the package is loaded.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "users"

// ── Authentication ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "disabled" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Accounts ─────────────────────────────────────────────────────────────────

// UsersRegisteredTotal counts accounts created through the API or bootstrap.
// Label:
//   - role: "admin" or "standard"
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registered_total",
		Help:      "Total number of user accounts created, by role.",
	},
	[]string{"role"},
)

var UsersUpdatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updated_total",
		Help:      "Total number of successful user updates.",
	},
)

var UsersDeactivatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deactivated_total",
		Help:      "Total number of user accounts deactivated.",
	},
)

// ── Feature flags ────────────────────────────────────────────────────────────

// FlagEventsDeliveredTotal counts flag events written to the sink.
// Label:
//   - event: tracked event name (e.g. "user_login")
var FlagEventsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flag_events_delivered_total",
		Help:      "Total number of feature-flag events delivered to the sink.",
	},
	[]string{"event"},
)

var FlagEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flag_events_dropped_total",
		Help:      "Total number of feature-flag events dropped because a queue was full.",
	},
)

// FlagEventsQueueDepth tracks events waiting in each dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var FlagEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "flag_events_queue_depth",
		Help:      "Current number of flag events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
