package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// CampaignAnalytics is the performance summary of a single campaign.
type CampaignAnalytics struct {
	CampaignID      string
	Title           string
	Status          Status
	Impressions     int64
	Clicks          int64
	CTR             Percentage
	Budget          decimal.Decimal
	Spend           decimal.Decimal
	BudgetRemaining decimal.Decimal
	StartDate       time.Time
	EndDate         time.Time
	// DaysRunning counts whole days since StartDate as of now. It keeps
	// growing after EndDate and is negative before the campaign starts.
	DaysRunning int64
	IsActive    bool
}

// PerCampaign summarises c as of now.
func PerCampaign(c *Campaign, now time.Time) CampaignAnalytics {
	return CampaignAnalytics{
		CampaignID:      c.ID,
		Title:           c.Title,
		Status:          c.Status,
		Impressions:     c.Impressions,
		Clicks:          c.Clicks,
		CTR:             c.CTR(),
		Budget:          c.Budget,
		Spend:           c.Spend,
		BudgetRemaining: c.BudgetRemaining(),
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		DaysRunning:     floorDays(now.Sub(c.StartDate)),
		IsActive:        IsActive(c, now),
	}
}

func floorDays(d time.Duration) int64 {
	days := int64(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}

// OverallAnalytics aggregates a set of campaigns.
type OverallAnalytics struct {
	TotalCampaigns     int
	ActiveCampaigns    int
	PendingCampaigns   int
	PausedCampaigns    int
	CompletedCampaigns int
	RejectedCampaigns  int
	TotalImpressions   int64
	TotalClicks        int64
	TotalBudget        decimal.Decimal
	TotalSpend         decimal.Decimal
	// AverageCTR is the mean of the per-campaign rates, not the rate of the
	// summed counters.
	AverageCTR Percentage
}

// Overall folds campaigns into totals. The input is only read. An empty
// set yields zero totals and a zero average.
func Overall(campaigns []Campaign) OverallAnalytics {
	out := OverallAnalytics{
		TotalCampaigns: len(campaigns),
		TotalBudget:    decimal.Zero,
		TotalSpend:     decimal.Zero,
	}
	ctrSum := decimal.Zero
	for i := range campaigns {
		c := &campaigns[i]
		switch c.Status {
		case StatusActive:
			out.ActiveCampaigns++
		case StatusPending:
			out.PendingCampaigns++
		case StatusPaused:
			out.PausedCampaigns++
		case StatusCompleted:
			out.CompletedCampaigns++
		case StatusRejected:
			out.RejectedCampaigns++
		}
		out.TotalImpressions += c.Impressions
		out.TotalClicks += c.Clicks
		out.TotalBudget = out.TotalBudget.Add(c.Budget)
		out.TotalSpend = out.TotalSpend.Add(c.Spend)
		ctrSum = ctrSum.Add(c.CTR().Decimal())
	}
	if len(campaigns) > 0 {
		out.AverageCTR = NewPercentage(ctrSum.DivRound(decimal.NewFromInt(int64(len(campaigns))), 2))
	}
	return out
}
