package port

import (
	"context"

	"github.com/shopspring/decimal"

	"ad-campaigns/internal/core/domain"
)

// CampaignUseCase defines the campaign lifecycle operations exposed to
// inbound adapters. Create and update run the lifecycle validation and
// fail with *domain.ValidationError listing every invalid field.
type CampaignUseCase interface {
	CreateCampaign(ctx context.Context, input domain.CampaignInput) (*domain.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, error)
	UpdateCampaign(ctx context.Context, id string, patch domain.CampaignPatch) (*domain.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
}

// MetricsRecorder counts ad views and clicks. Every call is trusted and
// counted; there is no deduplication, rate limiting or fraud filtering.
// Recording against an unknown campaign fails with *domain.NotFoundError
// and never creates the record.
type MetricsRecorder interface {
	RecordImpression(ctx context.Context, campaignID string) (int64, error)
	RecordClick(ctx context.Context, campaignID string) (int64, error)
}

// AnalyticsUseCase reports campaign performance. Results depend only on the
// stored snapshot and the current time.
type AnalyticsUseCase interface {
	CampaignAnalytics(ctx context.Context, campaignID string) (*domain.CampaignAnalytics, error)
	// OverallAnalytics aggregates all campaigns, or only those owned by
	// advertiserID when it is not empty.
	OverallAnalytics(ctx context.Context, advertiserID string) (*domain.OverallAnalytics, error)
}

// PaymentUseCase maps payment gateway outcomes onto campaign state.
type PaymentUseCase interface {
	// StartPayment charges the campaign through the named provider and
	// records the attempt. Providers that settle synchronously confirm the
	// payment immediately.
	StartPayment(ctx context.Context, provider string, req ChargeRequest) (*Charge, error)
	OnPaymentInitiated(ctx context.Context, campaignID, reference string) (*domain.Campaign, error)
	// OnPaymentConfirmed and OnPaymentFailed look the campaign up by the
	// gateway reference, not by campaign id.
	OnPaymentConfirmed(ctx context.Context, reference string) (*domain.Campaign, error)
	OnPaymentFailed(ctx context.Context, reference string) (*domain.Campaign, error)
	PaymentStatus(ctx context.Context, campaignID string) (*domain.Campaign, error)
}

// ChargeRequest asks a gateway to take payment for a campaign. A zero
// Amount charges the campaign budget.
type ChargeRequest struct {
	CampaignID      string
	Amount          decimal.Decimal
	Email           string
	PaymentMethodID string
}

// Charge is the gateway's answer to a ChargeRequest. Settled is true when
// the money was taken synchronously; otherwise a webhook follows.
type Charge struct {
	Provider    string
	Reference   string
	Settled     bool
	RedirectURL string
	PollURL     string
}
