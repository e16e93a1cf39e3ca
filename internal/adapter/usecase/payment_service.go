package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/core/port"
	"ad-campaigns/internal/telemetry"
)

// Payment event names used in metrics.
const (
	eventInitiated = "initiated"
	eventConfirmed = "confirmed"
	eventFailed    = "failed"
)

// PaymentService implements port.PaymentUseCase. Gateway callbacks are
// applied idempotently: a repeated confirmation or failure leaves the
// record, including UpdatedAt, untouched.
type PaymentService struct {
	repo     port.CampaignRepository
	gateways map[string]port.PaymentGateway
	metrics  *telemetry.Metrics

	now func() time.Time
}

// NewPaymentService creates a payment service. Gateways are addressed by
// their lower-cased provider name.
func NewPaymentService(repo port.CampaignRepository, metrics *telemetry.Metrics, gateways ...port.PaymentGateway) *PaymentService {
	byName := make(map[string]port.PaymentGateway, len(gateways))
	for _, g := range gateways {
		byName[strings.ToLower(g.Provider())] = g
	}
	return &PaymentService{repo: repo, gateways: byName, metrics: metrics, now: time.Now}
}

// StartPayment charges a campaign through provider. The returned reference
// is stored on the campaign; a synchronously settled charge activates it
// right away.
func (s *PaymentService) StartPayment(ctx context.Context, provider string, req port.ChargeRequest) (_ *port.Charge, err error) {
	ctx, span := startSpan(ctx, "PaymentService.StartPayment",
		campaignAttr(req.CampaignID), attribute.String("payment.provider", provider))
	defer func() { endSpan(span, err) }()

	gw, ok := s.gateways[strings.ToLower(provider)]
	if !ok {
		return nil, domain.Invalid("provider", "unknown payment provider "+provider)
	}
	c, err := s.repo.Get(ctx, req.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("start payment: %w", err)
	}
	if req.Amount.IsZero() {
		req.Amount = c.Budget
	}
	if !req.Amount.IsPositive() {
		return nil, domain.Invalid("amount", "must be positive")
	}

	charge, err := gw.Charge(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s charge: %w", gw.Provider(), err)
	}
	charge.Provider = gw.Provider()

	if _, err = s.OnPaymentInitiated(ctx, c.ID, charge.Reference); err != nil {
		return nil, err
	}
	if charge.Settled {
		if _, err = s.OnPaymentConfirmed(ctx, charge.Reference); err != nil {
			return nil, err
		}
	}
	return charge, nil
}

// OnPaymentInitiated stores the gateway reference and marks the payment
// pending. Campaign status is left as it is.
func (s *PaymentService) OnPaymentInitiated(ctx context.Context, campaignID, reference string) (*domain.Campaign, error) {
	if reference == "" {
		return nil, domain.Invalid("reference", "is required")
	}
	var changed bool
	c, err := s.repo.Update(ctx, campaignID, func(c *domain.Campaign) (bool, error) {
		changed = domain.InitiatePayment(c, reference, s.now())
		return changed, nil
	})
	s.observe(eventInitiated, changed, err)
	if err != nil {
		return nil, fmt.Errorf("payment initiated: %w", err)
	}
	return c, nil
}

// OnPaymentConfirmed marks the payment paid and activates the campaign.
func (s *PaymentService) OnPaymentConfirmed(ctx context.Context, reference string) (*domain.Campaign, error) {
	return s.applyByReference(ctx, eventConfirmed, reference, domain.ConfirmPayment)
}

// OnPaymentFailed marks the payment failed. Campaign status is left as it
// is.
func (s *PaymentService) OnPaymentFailed(ctx context.Context, reference string) (*domain.Campaign, error) {
	return s.applyByReference(ctx, eventFailed, reference, domain.FailPayment)
}

// PaymentStatus returns the campaign so callers can read its payment state.
func (s *PaymentService) PaymentStatus(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	c, err := s.repo.Get(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("payment status: %w", err)
	}
	return c, nil
}

func (s *PaymentService) applyByReference(
	ctx context.Context,
	event, reference string,
	apply func(*domain.Campaign, time.Time) bool,
) (_ *domain.Campaign, err error) {
	ctx, span := startSpan(ctx, "PaymentService.Payment"+event, attribute.String("payment.reference", reference))
	defer func() { endSpan(span, err) }()

	if reference == "" {
		return nil, domain.Invalid("reference", "is required")
	}
	var changed bool
	c, err := s.repo.UpdateByPaymentReference(ctx, reference, func(c *domain.Campaign) (bool, error) {
		changed = apply(c, s.now())
		return changed, nil
	})
	s.observe(event, changed, err)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", event, err)
	}
	return c, nil
}

func (s *PaymentService) observe(event string, changed bool, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.PaymentEvent(event, "not_found")
	case err != nil:
		s.metrics.PaymentEvent(event, "error")
	case changed:
		s.metrics.PaymentEvent(event, "applied")
	default:
		s.metrics.PaymentEvent(event, "noop")
	}
}
