package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/core/port"
)

// CampaignService implements port.CampaignUseCase. It runs the lifecycle
// rules before anything reaches the repository.
type CampaignService struct {
	repo port.CampaignRepository

	now   func() time.Time
	newID func() string
}

// NewCampaignService creates a service backed by repo. Campaign ids are
// random UUIDs.
func NewCampaignService(repo port.CampaignRepository) *CampaignService {
	return &CampaignService{repo: repo, now: time.Now, newID: uuid.NewString}
}

// CreateCampaign validates the submission and stores it as a pending,
// unpaid campaign.
func (s *CampaignService) CreateCampaign(ctx context.Context, input domain.CampaignInput) (_ *domain.Campaign, err error) {
	ctx, span := startSpan(ctx, "CampaignService.CreateCampaign")
	defer func() { endSpan(span, err) }()

	c, err := domain.NewCampaign(input, s.newID(), s.now())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(campaignAttr(c.ID))
	if err = s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return &c, nil
}

// GetCampaign returns a campaign by id.
func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

// ListCampaigns returns campaigns matching filter, newest first.
func (s *CampaignService) ListCampaigns(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Invalid("status", "unknown status "+string(filter.Status))
	}
	campaigns, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

// UpdateCampaign applies an administrative patch atomically. The merged
// record is validated as a whole; status changes follow
// domain.CanTransition. Spend may be set above the budget.
func (s *CampaignService) UpdateCampaign(ctx context.Context, id string, patch domain.CampaignPatch) (_ *domain.Campaign, err error) {
	ctx, span := startSpan(ctx, "CampaignService.UpdateCampaign", campaignAttr(id))
	defer func() { endSpan(span, err) }()

	updated, err := s.repo.Update(ctx, id, func(c *domain.Campaign) (bool, error) {
		next := *c
		if err := patch.Apply(&next, s.now()); err != nil {
			return false, err
		}
		*c = next
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}
	return updated, nil
}

// DeleteCampaign removes the campaign permanently.
func (s *CampaignService) DeleteCampaign(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return nil
}
