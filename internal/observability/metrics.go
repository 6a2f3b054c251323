// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "puntovuela_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "puntovuela_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RequestTransitions counts help-request lifecycle transitions by outcome.
	RequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "puntovuela_request_transitions_total",
		Help: "Total help-request lifecycle transitions by target state and outcome",
	}, []string{"transition", "outcome"})

	// NotificationsDispatched counts notification deliveries by channel and outcome.
	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "puntovuela_notifications_dispatched_total",
		Help: "Total notifications dispatched by channel (redis, email) and outcome",
	}, []string{"channel", "outcome"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// RecordTransition increments the lifecycle transition counter.
func RecordTransition(transition, outcome string) {
	RequestTransitions.WithLabelValues(transition, outcome).Inc()
}

// RecordNotification increments the notification dispatch counter.
func RecordNotification(channel, outcome string) {
	NotificationsDispatched.WithLabelValues(channel, outcome).Inc()
}
