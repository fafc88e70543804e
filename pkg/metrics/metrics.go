package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry is served at /api/metrics. A dedicated registry keeps test
	// binaries free of duplicate-registration panics from the default one.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Buckets cover fast local relays up to a slow SMTP handshake hitting the send timeout
	DeliveryBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Email delivery metrics, one observation per message attempt
	EmailDeliveries = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_deliveries_total",
			Help: "Total number of email delivery attempts",
		},
		[]string{"recipient", "provider", "status"},
	)

	EmailDeliveryDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_delivery_duration_seconds",
			Help:    "Email delivery duration in seconds",
			Buckets: DeliveryBuckets,
		},
		[]string{"provider", "status"},
	)

	// Business Metrics
	FormSubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laxmi_form_submissions_total",
			Help: "Total number of lead form submissions",
		},
		[]string{"form_type", "status"},
	)

	AttachmentOperations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attachment_operations_total",
			Help: "Total number of attachment staging operations",
		},
		[]string{"backend", "operation", "status"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}

// StatusLabel maps an error to the "success"/"error" label used across counters
func StatusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
