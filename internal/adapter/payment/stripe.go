// Package payment contains stand-in payment gateways. They issue references
// and URLs in the shape of the real providers without talking to them.
package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"ad-campaigns/internal/core/port"
)

// Stripe settles every charge synchronously, like a confirmed
// PaymentIntent.
type Stripe struct {
	newID func() string
}

var _ port.PaymentGateway = (*Stripe)(nil)

// NewStripe returns the Stripe stand-in.
func NewStripe() *Stripe {
	return &Stripe{newID: uuid.NewString}
}

// Provider implements port.PaymentGateway.
func (s *Stripe) Provider() string { return "stripe" }

// Charge returns a settled charge with a "pi_" reference.
func (s *Stripe) Charge(ctx context.Context, req port.ChargeRequest) (*port.Charge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &port.Charge{
		Reference: "pi_" + strings.ReplaceAll(s.newID(), "-", ""),
		Settled:   true,
	}, nil
}
