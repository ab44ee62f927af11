package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EngagementToggles counts like/bookmark/repost toggles by kind and resulting state.
	EngagementToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_engagement_toggles_total",
		Help: "Engagement toggles by kind and resulting state",
	}, []string{"kind", "state"})

	// ViewsRecorded counts view recordings by outcome (new or duplicate).
	ViewsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_views_recorded_total",
		Help: "View recordings by outcome",
	}, []string{"outcome"})

	// UniqueRacesAbsorbed counts unique-constraint violations treated as success.
	UniqueRacesAbsorbed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_unique_races_absorbed_total",
		Help: "Unique constraint violations treated as success",
	}, []string{"kind"})

	// FeedPageSize observes how many posts each feed page returned.
	FeedPageSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_feed_page_size",
		Help:    "Posts returned per feed page",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
	}, []string{"variant"})

	// StorageOperations counts object storage calls by driver, operation and result.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_storage_operations_total",
		Help: "Object storage operations",
	}, []string{"driver", "operation", "result"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts broadcast events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped for slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub"})
)

// ResultLabel maps an error to the "ok"/"error" label used by counters.
func ResultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
