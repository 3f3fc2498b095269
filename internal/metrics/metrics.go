package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded by RecordVitalWrite
const (
	VitalStored          = "stored"
	VitalPatientNotFound = "patient_not_found"
	VitalFailed          = "failed"
)

var (
	// HTTP request counter
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP request duration histogram
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// Active HTTP connections gauge
	HTTPActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	PatientsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "patients_created_total",
			Help: "Total number of patients created",
		},
	)

	VitalsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitals_recorded_total",
			Help: "Total number of vital readings write attempts",
		},
		[]string{"result"},
	)

	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of rejected write payloads",
		},
		[]string{"kind"}, // "patient", "vital"
	)

	SequenceLastValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sequence_last_value",
			Help: "Last value issued by a named sequence counter",
		},
		[]string{"counter"},
	)
)

// RecordHTTPRequest records metrics for an HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)

	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordPatientCreated counts a stored patient
func RecordPatientCreated() {
	PatientsCreatedTotal.Inc()
}

// RecordVitalWrite counts a vital write attempt by outcome
func RecordVitalWrite(result string) {
	VitalsRecordedTotal.WithLabelValues(result).Inc()
}

// RecordValidationFailure counts a rejected payload
func RecordValidationFailure(kind string) {
	ValidationFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordSequenceValue tracks the last issued value of a counter
func RecordSequenceValue(counter string, value uint64) {
	SequenceLastValue.WithLabelValues(counter).Set(float64(value))
}

// IncActiveConnections increments active connections
func IncActiveConnections() {
	HTTPActiveConnections.Inc()
}

// DecActiveConnections decrements active connections
func DecActiveConnections() {
	HTTPActiveConnections.Dec()
}
