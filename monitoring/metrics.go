package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operational metrics, exposed at /metrics.
var (
	registry = prometheus.NewRegistry()

	OrdersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "restaurant_orders_created_total",
			Help: "Number of orders placed",
		},
	)

	ItemTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kds_item_transitions_total",
			Help: "Order item prep status transitions",
		},
		[]string{"prep_status"},
	)

	OrdersBumped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kds_orders_bumped_total",
			Help: "Orders bumped off the kitchen display",
		},
	)

	EventsBroadcast = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kds_events_broadcast_total",
			Help: "WebSocket events queued for broadcast",
		},
		[]string{"event"},
	)

	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kds_events_dropped_total",
			Help: "WebSocket events dropped because the queue was full",
		},
		[]string{"event"},
	)

	WebsocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kds_websocket_connections",
			Help: "Currently connected KDS clients",
		},
	)
)

func init() {
	registry.MustRegister(
		OrdersCreated,
		ItemTransitions,
		OrdersBumped,
		EventsBroadcast,
		EventsDropped,
		WebsocketConnections,
	)
}

// Handler serves the metrics registry for Prometheus scrapes.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
