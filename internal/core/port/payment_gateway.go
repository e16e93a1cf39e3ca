package port

import "context"

// PaymentGateway is an outbound port to an external payment provider.
type PaymentGateway interface {
	// Provider returns the provider name used in routes and metrics.
	Provider() string
	// Charge starts a payment and returns the provider's reference for it.
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}
