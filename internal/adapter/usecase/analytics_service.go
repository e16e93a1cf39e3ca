package usecase

import (
	"context"
	"fmt"
	"time"

	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/core/port"
)

// AnalyticsService implements port.AnalyticsUseCase. It reads a snapshot
// from the repository and folds it without holding any lock, so reports may
// trail concurrent writers slightly.
type AnalyticsService struct {
	repo port.CampaignRepository

	now func() time.Time
}

// NewAnalyticsService creates an analytics service backed by repo.
func NewAnalyticsService(repo port.CampaignRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: time.Now}
}

// CampaignAnalytics returns the performance summary of one campaign.
func (s *AnalyticsService) CampaignAnalytics(ctx context.Context, campaignID string) (*domain.CampaignAnalytics, error) {
	c, err := s.repo.Get(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("campaign analytics: %w", err)
	}
	a := domain.PerCampaign(c, s.now())
	return &a, nil
}

// OverallAnalytics aggregates every campaign, or the advertiser's
// campaigns when advertiserID is set.
func (s *AnalyticsService) OverallAnalytics(ctx context.Context, advertiserID string) (_ *domain.OverallAnalytics, err error) {
	ctx, span := startSpan(ctx, "AnalyticsService.OverallAnalytics")
	defer func() { endSpan(span, err) }()

	campaigns, err := s.repo.List(ctx, domain.CampaignFilter{AdvertiserID: advertiserID})
	if err != nil {
		return nil, fmt.Errorf("overall analytics: %w", err)
	}
	o := domain.Overall(campaigns)
	return &o, nil
}
