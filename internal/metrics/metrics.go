package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "printer_admin"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	realtimeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_events_total",
			Help:      "Change events received from the realtime feed by table.",
		},
		[]string{"table"},
	)

	collectionReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_reloads_total",
			Help:      "Dashboard collection re-fetches by collection and result.",
		},
		[]string{"collection", "result"},
	)

	bookingMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_mutations_total",
			Help:      "Booking workflow actions by action and outcome.",
		},
		[]string{"action", "outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, realtimeEvents, collectionReloads, bookingMutations)
	})
}

func IncHTTP(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}

func IncRealtimeEvent(table string) {
	realtimeEvents.WithLabelValues(table).Inc()
}

func IncReload(collection string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	collectionReloads.WithLabelValues(collection, result).Inc()
}

func IncBookingMutation(action, outcome string) {
	bookingMutations.WithLabelValues(action, outcome).Inc()
}
