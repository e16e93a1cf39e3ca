package payment

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"ad-campaigns/internal/core/port"
)

// Paynow hands out a redirect and a poll URL and leaves the charge pending.
// The outcome arrives later through the Paynow webhook.
type Paynow struct {
	baseURL string
	newID   func() string
}

var _ port.PaymentGateway = (*Paynow)(nil)

// NewPaynow returns the Paynow stand-in. baseURL prefixes the redirect and
// poll URLs.
func NewPaynow(baseURL string) (*Paynow, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("paynow base url: %w", err)
	}
	return &Paynow{baseURL: baseURL, newID: uuid.NewString}, nil
}

// Provider implements port.PaymentGateway.
func (p *Paynow) Provider() string { return "paynow" }

// Charge returns a pending charge with a "PAYNOW_" reference.
func (p *Paynow) Charge(ctx context.Context, req port.ChargeRequest) (*port.Charge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref := "PAYNOW_" + p.newID()
	redirect, err := url.JoinPath(p.baseURL, "pay", ref)
	if err != nil {
		return nil, err
	}
	poll, err := url.JoinPath(p.baseURL, "poll", ref)
	if err != nil {
		return nil, err
	}
	return &port.Charge{
		Reference:   ref,
		RedirectURL: redirect,
		PollURL:     poll,
	}, nil
}
