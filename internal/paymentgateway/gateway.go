package paymentgateway

import (
	"context"

	paymentgatewaytypes "github.com/frahmantamala/payment-gateway/internal/core/datamodel/paymentgateway"
)

// Gateway is one external card processor.
type Gateway interface {
	// Name is recorded as the provider on every attempt routed here.
	Name() string
	Supports(partnerID int64) bool
	// Approve returns *AuthenticationError or *ValidationError for definite
	// refusals. Any other error means the outcome is unknown.
	Approve(ctx context.Context, req *paymentgatewaytypes.ApproveRequest) (*paymentgatewaytypes.ApproveResult, error)
}

// Registry routes partners to gateways in registration order.
type Registry struct {
	gateways []Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	return &Registry{gateways: gateways}
}

// Select returns the first gateway that supports partnerID.
func (r *Registry) Select(partnerID int64) (Gateway, bool) {
	for _, g := range r.gateways {
		if g.Supports(partnerID) {
			return g, true
		}
	}
	return nil, false
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.gateways))
	for i, g := range r.gateways {
		names[i] = g.Name()
	}
	return names
}
