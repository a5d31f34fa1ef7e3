package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeApproved      = "approved"
	OutcomeRejected      = "rejected"
	OutcomeIndeterminate = "indeterminate"
)

// PaymentMetrics records gateway calls and created payments.
type PaymentMetrics struct {
	approveDuration *prometheus.HistogramVec
	approveTotal    *prometheus.CounterVec
	paymentsCreated *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	approveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pg_approve_duration_seconds",
		Help:    "Duration of payment gateway approve calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	approveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pg_approve_total",
		Help: "Payment gateway approve calls by outcome.",
	}, []string{"provider", "outcome"})
	paymentsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_created_total",
		Help: "Payments persisted after approval.",
	}, []string{"provider"})
	reg.MustRegister(approveDuration, approveTotal, paymentsCreated)
	return &PaymentMetrics{
		approveDuration: approveDuration,
		approveTotal:    approveTotal,
		paymentsCreated: paymentsCreated,
	}
}

// ObserveApprove records one gateway call.
func (m *PaymentMetrics) ObserveApprove(provider, outcome string, duration time.Duration) {
	if m == nil || m.approveTotal == nil {
		return
	}
	provider = normalizeLabel(provider)
	m.approveDuration.WithLabelValues(provider).Observe(duration.Seconds())
	m.approveTotal.WithLabelValues(provider, normalizeLabel(outcome)).Inc()
}

// IncPaymentCreated increments the persisted payment counter.
func (m *PaymentMetrics) IncPaymentCreated(provider string) {
	if m == nil || m.paymentsCreated == nil {
		return
	}
	m.paymentsCreated.WithLabelValues(normalizeLabel(provider)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
