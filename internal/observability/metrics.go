package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ActiveWebSockets is the gauge of currently connected notification sockets.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_websocket_connections_active",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})

	// NotificationsDispatched counts real-time notification pushes by kind.
	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_notifications_dispatched_total",
		Help: "Total number of real-time notification events dispatched",
	}, []string{"type"})
)

const queryStartKey = "pulse:query_start"

// InstrumentGorm registers callbacks that record per-query latency into
// DatabaseQueryLatency, labeled by operation and table.
func InstrumentGorm(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).
				Observe(time.Since(start).Seconds())
		}
	}

	if err := db.Callback().Query().Before("gorm:query").Register("pulse:metrics_select_before", before); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("pulse:metrics_select_after", after("select")); err != nil {
		return err
	}
	if err := db.Callback().Create().Before("gorm:create").Register("pulse:metrics_insert_before", before); err != nil {
		return err
	}
	if err := db.Callback().Create().After("gorm:create").Register("pulse:metrics_insert_after", after("insert")); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("pulse:metrics_update_before", before); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("pulse:metrics_update_after", after("update")); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("pulse:metrics_delete_before", before); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("pulse:metrics_delete_after", after("delete")); err != nil {
		return err
	}
	return nil
}
