package httpadapter

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"ad-campaigns/internal/core/domain"
)

type campaignAnalyticsDTO struct {
	CampaignID      string            `json:"campaignId"`
	Title           string            `json:"title"`
	Status          domain.Status     `json:"status"`
	Impressions     int64             `json:"impressions"`
	Clicks          int64             `json:"clicks"`
	CTR             domain.Percentage `json:"ctr"`
	Budget          decimal.Decimal   `json:"budget"`
	Spend           decimal.Decimal   `json:"spend"`
	BudgetRemaining decimal.Decimal   `json:"budgetRemaining"`
	StartDate       time.Time         `json:"startDate"`
	EndDate         time.Time         `json:"endDate"`
	DaysRunning     int64             `json:"daysRunning"`
	IsActive        bool              `json:"isActive"`
}

type overallAnalyticsDTO struct {
	TotalCampaigns     int               `json:"totalCampaigns"`
	ActiveCampaigns    int               `json:"activeCampaigns"`
	PendingCampaigns   int               `json:"pendingCampaigns"`
	PausedCampaigns    int               `json:"pausedCampaigns"`
	CompletedCampaigns int               `json:"completedCampaigns"`
	RejectedCampaigns  int               `json:"rejectedCampaigns"`
	TotalImpressions   int64             `json:"totalImpressions"`
	TotalClicks        int64             `json:"totalClicks"`
	TotalBudget        decimal.Decimal   `json:"totalBudget"`
	TotalSpend         decimal.Decimal   `json:"totalSpend"`
	AverageCTR         domain.Percentage `json:"averageCTR"`
}

// handleCampaignAnalytics returns the performance summary of one campaign.
func (h *Handler) handleCampaignAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Analytics.CampaignAnalytics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "Error fetching campaign analytics", err)
		return
	}
	writeData(w, http.StatusOK, "", campaignAnalyticsDTO(*a))
}

// handleOverallAnalytics aggregates all campaigns. The optional advertiser
// query parameter narrows the set to one advertiser.
func (h *Handler) handleOverallAnalytics(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Analytics.OverallAnalytics(r.Context(), advertiserParam(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, "Error fetching overall analytics", err)
		return
	}
	writeData(w, http.StatusOK, "", overallAnalyticsDTO(*o))
}
