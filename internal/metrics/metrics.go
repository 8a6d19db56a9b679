package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	availabilityRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "valgop",
			Name:      "availability_requests_total",
			Help:      "Count of availability queries.",
		},
	)

	slotsServed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "valgop",
			Name:      "slots_served_total",
			Help:      "Count of open slots returned to callers.",
		},
	)

	searchProbes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "valgop",
			Name:      "alternative_search_probes_total",
			Help:      "Count of day probes issued by the alternative-day search.",
		},
	)

	bookingOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "valgop",
			Name:      "booking_outcome_total",
			Help:      "Count of booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "valgop",
			Name:      "booking_cancelled_total",
			Help:      "Count of reservations cancelled by code.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "valgop",
			Name:      "http_requests_total",
			Help:      "Count of HTTP API requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(availabilityRequests, slotsServed, searchProbes, bookingOutcome, bookingCancelled, httpRequests)
	})
}

func IncAvailabilityRequest() {
	availabilityRequests.Inc()
}

func AddSlotsServed(n int) {
	slotsServed.Add(float64(n))
}

func IncSearchProbe() {
	searchProbes.Inc()
}

func IncBookingOutcome(outcome string) {
	bookingOutcome.WithLabelValues(outcome).Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
