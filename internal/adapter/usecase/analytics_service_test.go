package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/core/port/mocks"
)

func TestCampaignAnalytics(t *testing.T) {
	c := sampleCampaign("c1")
	c.Status = domain.StatusActive
	c.Impressions = 1000
	c.Clicks = 50
	repo, _ := newFakeRepo(t, c)

	svc := NewAnalyticsService(repo)
	svc.now = clock

	a, err := svc.CampaignAnalytics(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "5.00", a.CTR.String())
	assert.Equal(t, "750", a.BudgetRemaining.String())
	assert.Equal(t, int64(3), a.DaysRunning)
	assert.True(t, a.IsActive)
}

func TestCampaignAnalyticsNotFound(t *testing.T) {
	repo, _ := newFakeRepo(t)
	svc := NewAnalyticsService(repo)

	_, err := svc.CampaignAnalytics(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOverallAnalyticsByAdvertiser(t *testing.T) {
	a := sampleCampaign("a")
	a.Status = domain.StatusActive
	a.Impressions, a.Clicks = 100, 10
	b := sampleCampaign("b")
	b.Status = domain.StatusPaused
	b.Impressions, b.Clicks = 200, 10

	repo := mocks.NewMockCampaignRepository(t)
	repo.EXPECT().
		List(mock.Anything, domain.CampaignFilter{AdvertiserID: "adv-1"}).
		Return([]domain.Campaign{a, b}, nil)

	svc := NewAnalyticsService(repo)
	o, err := svc.OverallAnalytics(context.Background(), "adv-1")
	require.NoError(t, err)

	assert.Equal(t, 2, o.TotalCampaigns)
	assert.Equal(t, 1, o.ActiveCampaigns)
	assert.Equal(t, 1, o.PausedCampaigns)
	assert.Equal(t, int64(300), o.TotalImpressions)
	assert.Equal(t, int64(20), o.TotalClicks)
	assert.Equal(t, "2000", o.TotalBudget.String())
	assert.Equal(t, "7.50", o.AverageCTR.String())
}

func TestOverallAnalyticsStoreFailure(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	repo.EXPECT().List(mock.Anything, mock.Anything).
		Return(nil, &domain.StoreError{Op: "list", Err: errors.New("connection reset")})

	svc := NewAnalyticsService(repo)
	_, err := svc.OverallAnalytics(context.Background(), "")

	var serr *domain.StoreError
	assert.ErrorAs(t, err, &serr)
}
