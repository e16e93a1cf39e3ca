package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignInput is the advertiser submission that creates a campaign.
// Budget is a pointer so that an absent budget can be told apart from a
// zero one.
type CampaignInput struct {
	AdvertiserID string
	AdType       AdType
	AdContent    string
	ContentKind  ContentKind
	AdPlacement  AdPlacement
	Title        string
	Description  string
	TargetURL    string
	StartDate    time.Time
	EndDate      time.Time
	Budget       *decimal.Decimal
}

// NewCampaign validates input and builds a pending, unpaid campaign with
// zeroed counters. All violations are reported together.
func NewCampaign(input CampaignInput, id string, now time.Time) (Campaign, error) {
	c := Campaign{
		ID:            id,
		AdvertiserID:  input.AdvertiserID,
		AdType:        input.AdType,
		AdContent:     input.AdContent,
		ContentKind:   input.ContentKind,
		AdPlacement:   input.AdPlacement,
		Title:         input.Title,
		Description:   input.Description,
		TargetURL:     input.TargetURL,
		StartDate:     input.StartDate.UTC(),
		EndDate:       input.EndDate.UTC(),
		Spend:         decimal.Zero,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if c.ContentKind == "" {
		c.ContentKind = ContentKindURL
	}

	verr := &ValidationError{}
	if input.Budget == nil {
		verr.add("budget", "is required")
	} else {
		c.Budget = *input.Budget
	}
	validate(&c, verr)
	if err := verr.orNil(); err != nil {
		return Campaign{}, err
	}
	return c, nil
}

// CampaignPatch is an administrative update. Nil fields are left untouched.
// Counters, ownership and timestamps cannot be patched.
type CampaignPatch struct {
	AdType        *AdType
	AdContent     *string
	ContentKind   *ContentKind
	AdPlacement   *AdPlacement
	Title         *string
	Description   *string
	TargetURL     *string
	StartDate     *time.Time
	EndDate       *time.Time
	Budget        *decimal.Decimal
	Spend         *decimal.Decimal
	Status        *Status
	PaymentStatus *PaymentStatus
}

// Apply merges the patch into c and validates the merged record, including
// the status transition. c is modified even when an error is returned, so
// callers apply it to a copy they can discard.
func (p CampaignPatch) Apply(c *Campaign, now time.Time) error {
	from := c.Status

	if p.AdType != nil {
		c.AdType = *p.AdType
	}
	if p.AdContent != nil {
		c.AdContent = *p.AdContent
	}
	if p.ContentKind != nil {
		c.ContentKind = *p.ContentKind
	}
	if p.AdPlacement != nil {
		c.AdPlacement = *p.AdPlacement
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.TargetURL != nil {
		c.TargetURL = *p.TargetURL
	}
	if p.StartDate != nil {
		c.StartDate = p.StartDate.UTC()
	}
	if p.EndDate != nil {
		c.EndDate = p.EndDate.UTC()
	}
	if p.Budget != nil {
		c.Budget = *p.Budget
	}
	if p.Spend != nil {
		c.Spend = *p.Spend
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		c.PaymentStatus = *p.PaymentStatus
	}

	verr := &ValidationError{}
	validate(c, verr)
	if p.Status != nil && c.Status.Valid() && !CanTransition(from, c.Status) {
		verr.add("status", "cannot change from "+string(from)+" to "+string(c.Status))
	}
	if err := verr.orNil(); err != nil {
		return err
	}
	c.UpdatedAt = now.UTC()
	return nil
}
