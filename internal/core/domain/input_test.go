package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func validInput() CampaignInput {
	return CampaignInput{
		AdvertiserID: "507f1f77bcf86cd799439011",
		AdType:       AdTypeBanner,
		AdContent:    "https://example.com/banner.jpg",
		AdPlacement:  PlacementHomepage,
		Title:        "Test Campaign",
		Description:  "This is a test campaign",
		TargetURL:    "https://example.com",
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Budget:       ptr(dec("1000")),
	}
}

func TestNewCampaignDefaults(t *testing.T) {
	c, err := NewCampaign(validInput(), "camp-1", fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "camp-1", c.ID)
	assert.Equal(t, "Test Campaign", c.Title)
	assert.Equal(t, AdTypeBanner, c.AdType)
	assert.True(t, dec("1000").Equal(c.Budget))
	assert.True(t, c.Spend.IsZero())
	assert.Equal(t, StatusPending, c.Status)
	assert.Equal(t, PaymentPending, c.PaymentStatus)
	assert.Equal(t, ContentKindURL, c.ContentKind)
	assert.Zero(t, c.Impressions)
	assert.Zero(t, c.Clicks)
	assert.Equal(t, fixedNow, c.CreatedAt)
	assert.Equal(t, fixedNow, c.UpdatedAt)
}

func TestNewCampaignMissingBudgetReportedWithOthers(t *testing.T) {
	_, err := NewCampaign(CampaignInput{}, "camp-1", fixedNow)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	for _, field := range []string{"advertiserId", "adType", "adContent", "budget", "endDate"} {
		assert.True(t, verr.Has(field), "missing violation for %s", field)
	}
}

func TestNewCampaignZeroBudgetIsValid(t *testing.T) {
	in := validInput()
	in.Budget = ptr(decimal.Zero)
	_, err := NewCampaign(in, "camp-1", fixedNow)
	assert.NoError(t, err)
}

func TestPatchApply(t *testing.T) {
	c := validCampaign()
	c.Status = StatusActive
	later := fixedNow.Add(time.Hour)

	err := CampaignPatch{
		Title:  ptr("Renamed"),
		Spend:  ptr(dec("1200")),
		Status: ptr(StatusPaused),
	}.Apply(&c, later)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", c.Title)
	assert.True(t, dec("1200").Equal(c.Spend))
	assert.Equal(t, StatusPaused, c.Status)
	assert.Equal(t, later, c.UpdatedAt)
	assert.False(t, IsActive(&c, fixedNow))
}

func TestPatchRejectsTerminalTransition(t *testing.T) {
	c := validCampaign()
	c.Status = StatusCompleted

	err := CampaignPatch{Status: ptr(StatusActive)}.Apply(&c, fixedNow)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []FieldError{{Field: "status", Message: "cannot change from completed to active"}}, verr.Fields)
}

func TestPatchValidatesMergedDates(t *testing.T) {
	c := validCampaign()
	err := CampaignPatch{EndDate: ptr(c.StartDate.Add(-time.Hour))}.Apply(&c, fixedNow)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("endDate"))
}
