package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdType is the kind of creative a campaign runs.
type AdType string

const (
	AdTypeBanner           AdType = "banner"
	AdTypeSponsoredListing AdType = "sponsored_listing"
	AdTypeFeaturedVendor   AdType = "featured_vendor"
	AdTypeSidebar          AdType = "sidebar"
	AdTypeVideo            AdType = "video"
)

// Valid reports whether t is a known ad type.
func (t AdType) Valid() bool {
	switch t {
	case AdTypeBanner, AdTypeSponsoredListing, AdTypeFeaturedVendor, AdTypeSidebar, AdTypeVideo:
		return true
	}
	return false
}

// AdPlacement is the site slot a campaign is shown in.
type AdPlacement string

const (
	PlacementHomepage      AdPlacement = "homepage"
	PlacementCategoryPage  AdPlacement = "category_page"
	PlacementVendorListing AdPlacement = "vendor_listing"
	PlacementSearchResults AdPlacement = "search_results"
	PlacementSidebar       AdPlacement = "sidebar"
)

// Valid reports whether p is a known placement.
func (p AdPlacement) Valid() bool {
	switch p {
	case PlacementHomepage, PlacementCategoryPage, PlacementVendorListing, PlacementSearchResults, PlacementSidebar:
		return true
	}
	return false
}

// ContentKind tells renderers how to interpret AdContent. It is always set
// explicitly by the advertiser; the content string itself is never inspected.
type ContentKind string

const (
	ContentKindURL    ContentKind = "url"
	ContentKindMarkup ContentKind = "markup"
)

// Valid reports whether k is a known content kind.
func (k ContentKind) Valid() bool {
	return k == ContentKindURL || k == ContentKindMarkup
}

// Status is the lifecycle state of a campaign.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusPaused, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// PaymentStatus is the state of the campaign's payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Campaign represents an advertiser's time-boxed ad configuration together
// with its performance counters and payment state.
// Budget and Spend are stored as decimals in the account currency.
//
// Spend is allowed to exceed Budget: writes are not rejected, IsActive
// simply reports false once the budget is consumed.
//
// A payment confirmation activates the campaign only on the first
// confirmation and only where CanTransition permits it; see ConfirmPayment.
type Campaign struct {
	ID           string
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
	Budget       decimal.Decimal
	Spend        decimal.Decimal

	Impressions int64
	Clicks      int64

	Status               Status
	PaymentStatus        PaymentStatus
	PaymentTransactionID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CTR returns the click-through rate of the campaign.
func (c *Campaign) CTR() Percentage {
	return ComputeCTR(c.Impressions, c.Clicks)
}

// BudgetRemaining returns Budget minus Spend, possibly negative.
func (c *Campaign) BudgetRemaining() decimal.Decimal {
	return ComputeBudgetRemaining(c.Budget, c.Spend)
}

// Counter names one of the campaign's monotonic counters.
type Counter string

const (
	CounterImpressions Counter = "impressions"
	CounterClicks      Counter = "clicks"
)

// CampaignFilter narrows a campaign listing. Empty fields match everything.
// Listings are always ordered newest first.
type CampaignFilter struct {
	Status       Status
	AdvertiserID string
}

// Match reports whether c satisfies the filter.
func (f CampaignFilter) Match(c *Campaign) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.AdvertiserID != "" && c.AdvertiserID != f.AdvertiserID {
		return false
	}
	return true
}
