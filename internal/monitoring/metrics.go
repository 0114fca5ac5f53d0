package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	bookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Booking operations by type and outcome",
		},
		[]string{"operation", "outcome"},
	)

	referenceRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_reference_retries_total",
			Help: "Booking reference collisions that forced a retry",
		},
	)

	smsDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_deliveries_total",
			Help: "SMS delivery attempts by outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func ObserveBooking(operation, outcome string) {
	bookingOperations.WithLabelValues(operation, outcome).Inc()
}

func ObserveReferenceRetry() {
	referenceRetries.Inc()
}

func ObserveSMS(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	smsDeliveries.WithLabelValues(kind, outcome).Inc()
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
