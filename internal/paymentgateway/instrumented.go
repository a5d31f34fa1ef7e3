package paymentgateway

import (
	"context"
	"errors"
	"time"

	paymentgatewaytypes "github.com/frahmantamala/payment-gateway/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/payment-gateway/pkg/metrics"
)

type instrumented struct {
	Gateway
	metrics *metrics.PaymentMetrics
}

// WithMetrics wraps g so every Approve call is timed and counted by outcome.
func WithMetrics(g Gateway, m *metrics.PaymentMetrics) Gateway {
	if m == nil {
		return g
	}
	return &instrumented{Gateway: g, metrics: m}
}

func (i *instrumented) Approve(ctx context.Context, req *paymentgatewaytypes.ApproveRequest) (*paymentgatewaytypes.ApproveResult, error) {
	start := time.Now()
	res, err := i.Gateway.Approve(ctx, req)
	i.metrics.ObserveApprove(i.Name(), Outcome(err), time.Since(start))
	return res, err
}

// Outcome classifies an Approve error into a metrics outcome label.
func Outcome(err error) string {
	if err == nil {
		return metrics.OutcomeApproved
	}
	var authErr *AuthenticationError
	var validationErr *ValidationError
	if errors.As(err, &authErr) || errors.As(err, &validationErr) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeIndeterminate
}
