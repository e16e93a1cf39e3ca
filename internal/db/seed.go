package db

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/core/port"
)

// demoCampaign describes one seeded campaign.
type demoCampaign struct {
	adType    domain.AdType
	placement domain.AdPlacement
	status    domain.Status
	paid      bool
}

var demoCampaigns = []demoCampaign{
	{domain.AdTypeBanner, domain.PlacementHomepage, domain.StatusActive, true},
	{domain.AdTypeSponsoredListing, domain.PlacementSearchResults, domain.StatusActive, true},
	{domain.AdTypeFeaturedVendor, domain.PlacementVendorListing, domain.StatusPaused, true},
	{domain.AdTypeSidebar, domain.PlacementSidebar, domain.StatusPending, false},
	{domain.AdTypeVideo, domain.PlacementCategoryPage, domain.StatusCompleted, true},
}

// Seed inserts demo campaigns through repo. Campaigns that already exist
// are left alone, so seeding twice is harmless. It returns the number of
// campaigns created.
func Seed(ctx context.Context, repo port.CampaignRepository, now time.Time) (int, error) {
	r := rand.New(rand.NewSource(now.UnixNano()))

	created := 0
	for i, d := range demoCampaigns {
		budget := decimal.NewFromInt(int64(500 * (i + 1)))
		c, err := domain.NewCampaign(domain.CampaignInput{
			AdvertiserID: fmt.Sprintf("advertiser-%d", i%2+1),
			AdType:       d.adType,
			AdContent:    fmt.Sprintf("https://cdn.example.com/ads/%d.jpg", i+1),
			AdPlacement:  d.placement,
			Title:        fmt.Sprintf("Demo campaign %d", i+1),
			Description:  "Seeded for local development",
			TargetURL:    fmt.Sprintf("https://example.com/landing/%d", i+1),
			StartDate:    now.AddDate(0, 0, -7),
			EndDate:      now.AddDate(0, 1, 0),
			Budget:       &budget,
		}, fmt.Sprintf("demo-%d", i+1), now)
		if err != nil {
			return created, err
		}

		c.Status = d.status
		if d.paid {
			c.PaymentStatus = domain.PaymentPaid
			c.PaymentTransactionID = fmt.Sprintf("pi_demo_%d", i+1)
		}
		c.Impressions = int64(1000 + r.Intn(9000))
		c.Clicks = c.Impressions * int64(1+r.Intn(8)) / 100
		c.Spend = budget.Mul(decimal.NewFromFloat(r.Float64())).Round(2)
		// stagger creation so listings have a stable order
		c.CreatedAt = now.Add(time.Duration(i-len(demoCampaigns)) * time.Minute).UTC()
		c.UpdatedAt = c.CreatedAt

		if err = domain.Validate(&c); err != nil {
			return created, err
		}
		err = repo.Create(ctx, c)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
