package registration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

type Metrics struct {
	submissions *prometheus.CounterVec
	fieldErrors *prometheus.CounterVec
	activeForms prometheus.Gauge
}

// NewMetrics registers the registration collectors on reg. A nil reg yields
// working but unexported collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_submissions_total",
			Help: "Registration form submissions by outcome.",
		}, []string{"outcome"}),
		fieldErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_field_errors_total",
			Help: "Rejected registration fields by field name.",
		}, []string{"field"}),
		activeForms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "registration_active_forms",
			Help: "Open registration form sessions.",
		}),
	}
}

func (m *Metrics) observeAccepted() {
	m.submissions.WithLabelValues(outcomeAccepted).Inc()
}

func (m *Metrics) observeRejected(errs FieldErrors) {
	m.submissions.WithLabelValues(outcomeRejected).Inc()
	for field := range errs {
		m.fieldErrors.WithLabelValues(string(field)).Inc()
	}
}

func (m *Metrics) observeError() {
	m.submissions.WithLabelValues(outcomeError).Inc()
}

func (m *Metrics) setActiveForms(n int) {
	m.activeForms.Set(float64(n))
}
