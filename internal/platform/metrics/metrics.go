package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RegistrationsCreated   prometheus.Counter
	RegistrationsCompleted prometheus.Counter
	CodesIssued            prometheus.Counter
	CodesRedeemed          prometheus.Counter
	ValidationFailures     *prometheus.CounterVec
	RequestDuration        *prometheus.HistogramVec
}

// New creates all metrics on the default Prometheus registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics on the given registerer. Tests use a
// fresh registry per instance to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "udyam_registrations_created_total",
			Help: "Total number of registration records created",
		}),
		RegistrationsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "udyam_registrations_completed_total",
			Help: "Total number of registrations that reached verified status",
		}),
		CodesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "udyam_otp_issued_total",
			Help: "Total number of one-time codes issued",
		}),
		CodesRedeemed: factory.NewCounter(prometheus.CounterOpts{
			Name: "udyam_otp_redeemed_total",
			Help: "Total number of one-time codes redeemed successfully",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "udyam_validation_failures_total",
			Help: "Total number of failed validation checks by field",
		}, []string{"field"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "udyam_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// Helper methods tolerate a nil receiver so tests can run without a registry.

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, status).Observe(d.Seconds())
}

// IncValidationFailure bumps the failure counter for one field.
func (m *Metrics) IncValidationFailure(field string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(field).Inc()
}

// IncRegistrationsCreated increments the created counter by 1.
func (m *Metrics) IncRegistrationsCreated() {
	if m == nil {
		return
	}
	m.RegistrationsCreated.Inc()
}

// IncRegistrationsCompleted increments the completed counter by 1.
func (m *Metrics) IncRegistrationsCompleted() {
	if m == nil {
		return
	}
	m.RegistrationsCompleted.Inc()
}

// IncCodesIssued increments the issued-code counter by 1.
func (m *Metrics) IncCodesIssued() {
	if m == nil {
		return
	}
	m.CodesIssued.Inc()
}

// IncCodesRedeemed increments the redeemed-code counter by 1.
func (m *Metrics) IncCodesRedeemed() {
	if m == nil {
		return
	}
	m.CodesRedeemed.Inc()
}
