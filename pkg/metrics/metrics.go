package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all scheduling-engine metrics
type Metrics struct {
	ReservationsCommitted prometheus.Counter
	ReservationConflicts  prometheus.Counter
	WorkSessionConflicts  prometheus.Counter
	SlotsComputed         prometheus.Histogram
	BookingFlowsStarted   prometheus.Counter
	BookingFlowsConfirmed prometheus.Counter
	BookingFlowsReset     prometheus.Counter
	StaleResponsesDropped prometheus.Counter
	LockWaitDuration      *prometheus.HistogramVec
	HTTPRequests          *prometheus.CounterVec
	HTTPDuration          *prometheus.HistogramVec
}

// New creates and registers the scheduling metrics.
func New(namespace string) *Metrics {
	return &Metrics{
		ReservationsCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_committed_total",
			Help:      "Total number of appointments committed by the reservation transaction",
		}),
		ReservationConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_conflicts_total",
			Help:      "Total number of reservations rejected with a conflict",
		}),
		WorkSessionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "work_session_conflicts_total",
			Help:      "Total number of work-session writes rejected with a conflict",
		}),
		SlotsComputed: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "slots_computed_per_query",
			Help:      "Number of bookable slots produced per availability query",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		BookingFlowsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_flows_started_total",
			Help:      "Total number of booking flows started",
		}),
		BookingFlowsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_flows_confirmed_total",
			Help:      "Total number of booking flows that reached a committed reservation",
		}),
		BookingFlowsReset: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_flows_reset_total",
			Help:      "Total number of booking flows reset or abandoned",
		}),
		StaleResponsesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_dropped_total",
			Help:      "Availability responses discarded because the flow moved on",
		}),
		LockWaitDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_duration_seconds",
			Help:      "Time spent waiting for per-staff serialization locks",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"scope"}),
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"method", "path", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}
