package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-campaigns/internal/core/domain"
)

func TestListConditions(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.CampaignFilter
		where  string
		args   []any
	}{
		{name: "none", filter: domain.CampaignFilter{}},
		{
			name:   "status",
			filter: domain.CampaignFilter{Status: domain.StatusActive},
			where:  " WHERE status = $1",
			args:   []any{domain.StatusActive},
		},
		{
			name:   "both",
			filter: domain.CampaignFilter{Status: domain.StatusPaused, AdvertiserID: "adv-1"},
			where:  " WHERE status = $1 AND advertiser_id = $2",
			args:   []any{domain.StatusPaused, "adv-1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := listConditions(tt.filter)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestCounterColumn(t *testing.T) {
	col, err := counterColumn(domain.CounterClicks)
	require.NoError(t, err)
	assert.Equal(t, "clicks", col)

	_, err = counterColumn("spend; DROP TABLE campaigns")
	assert.Error(t, err)
}
