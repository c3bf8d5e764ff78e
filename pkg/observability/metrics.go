// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the buchung gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

// APIBuckets defines histogram buckets suited for short CRUD request
// latencies, ranging from 5ms to 10s.
var APIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by method, route, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buchung_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buchung_request_duration_seconds",
			Help:    "Request duration",
			Buckets: APIBuckets,
		},
		[]string{"method", "route"},
	)

	// ReservationConflictsTotal counts reservation attempts rejected because
	// the requested slot overlaps an existing booking.
	ReservationConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "buchung_reservation_conflicts_total",
			Help: "Rejected overlapping reservations",
		},
	)

	// IdentityCallsTotal counts calls to the identity provider by operation
	// and outcome.
	IdentityCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buchung_identity_calls_total",
			Help: "Identity provider calls",
		},
		[]string{"operation", "status"},
	)

	// StoreCallsTotal counts storage operations by collection, operation,
	// and outcome.
	StoreCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buchung_store_calls_total",
			Help: "Store operations",
		},
		[]string{"collection", "operation", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		ReservationConflictsTotal,
		IdentityCallsTotal,
		StoreCallsTotal,
	)
}
