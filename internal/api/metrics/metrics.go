// Package metrics defines and registers all custom Prometheus metrics for the
// cargo tracking services. It is the single source of truth for metric names,
// labels, and help strings.
//
// All collectors are registered with the default registry through promauto,
// which is the registry served by echoprometheus on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracking"

// ── Ingest metrics ────────────────────────────────────────────────────────────

// LocationUpdatesTotal counts location updates by outcome.
// Labels:
//   - path: "ingest" or "history"
//   - result: "accepted", "not_found", "error"
var LocationUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_updates_total",
		Help:      "Total number of location updates processed, by path and result.",
	},
	[]string{"path", "result"},
)

// LocationUpdateDuration measures end-to-end ingest processing.
var LocationUpdateDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "location_update_duration_seconds",
		Help:      "Duration of location update processing.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"path"},
)

// DependencyErrorsTotal counts failed calls to brokers, stores and remote services.
// Label:
//   - dependency: "broadcast", "history", "shipment_api", "event_stream", "notifier", "cache"
var DependencyErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dependency_errors_total",
		Help:      "Total number of failed dependency calls.",
	},
	[]string{"dependency"},
)

// StatusTransitionsTotal counts status changes triggered by proximity checks.
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of shipment status transitions, by new status.",
	},
	[]string{"status"},
)

// ── Stream metrics ────────────────────────────────────────────────────────────

// EventsPublishedTotal counts entries appended to the event stream.
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of status-change events appended to the stream.",
	},
	[]string{"event_type"},
)

// EventsConsumedTotal counts stream entries handled by the consumer.
// Labels:
//   - event_type: decoded type, "Unknown" or "malformed"
//   - result: "acked", "duplicate", "dispatch_error"
var EventsConsumedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_consumed_total",
		Help:      "Total number of stream entries handled by the consumer.",
	},
	[]string{"event_type", "result"},
)

// EventsClaimedTotal counts idle entries reclaimed for redelivery.
var EventsClaimedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_claimed_total",
		Help:      "Total number of idle pending entries claimed for redelivery.",
	},
)

// ── Position relay metrics ────────────────────────────────────────────────────

// PositionsRelayedTotal counts raw positions pushed to live viewers.
var PositionsRelayedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "positions_relayed_total",
		Help:      "Total number of raw positions relayed to the hub.",
	},
)

// PositionsDroppedTotal counts positions discarded because a relay worker was saturated
// or the payload could not be decoded.
var PositionsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "positions_dropped_total",
		Help:      "Total number of raw positions dropped before relay.",
	},
	[]string{"reason"},
)

// RelayQueueDepth tracks pending positions per relay worker.
var RelayQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "relay_queue_depth",
		Help:      "Current number of positions pending in each relay worker channel.",
	},
	[]string{"worker_id"},
)

// ── Hub metrics ───────────────────────────────────────────────────────────────

// HubConnections tracks open real-time connections.
var HubConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hub_connections",
		Help:      "Current number of open real-time connections.",
	},
)

// HubPushesTotal counts frames delivered to local connections, by event name.
var HubPushesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hub_pushes_total",
		Help:      "Total number of frames written to local connections.",
	},
	[]string{"event"},
)

// HubSlowClientsTotal counts connections dropped because their send buffer was full.
var HubSlowClientsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hub_slow_clients_total",
		Help:      "Total number of connections dropped for falling behind.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notifications by stage and result.
// Labels:
//   - stage: "publish" (tracking or shipment service) or "relay" (notification service)
//   - result: "ok", "error", "skipped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of status notifications, by stage and result.",
	},
	[]string{"stage", "result"},
)
