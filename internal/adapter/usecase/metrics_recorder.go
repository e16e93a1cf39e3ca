package usecase

import (
	"context"
	"fmt"
	"time"

	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/core/port"
	"ad-campaigns/internal/telemetry"
)

// MetricsRecorder implements port.MetricsRecorder on top of the
// repository's atomic increment. It never reads a counter and writes it
// back, so concurrent calls for one campaign cannot lose updates.
type MetricsRecorder struct {
	repo    port.CampaignRepository
	metrics *telemetry.Metrics

	now func() time.Time
}

// NewMetricsRecorder creates a recorder. metrics may be nil.
func NewMetricsRecorder(repo port.CampaignRepository, metrics *telemetry.Metrics) *MetricsRecorder {
	return &MetricsRecorder{repo: repo, metrics: metrics, now: time.Now}
}

// RecordImpression counts one view of the campaign's ad and returns the new
// impression count.
func (r *MetricsRecorder) RecordImpression(ctx context.Context, campaignID string) (int64, error) {
	return r.record(ctx, campaignID, domain.CounterImpressions)
}

// RecordClick counts one click and returns the new click count.
func (r *MetricsRecorder) RecordClick(ctx context.Context, campaignID string) (int64, error) {
	return r.record(ctx, campaignID, domain.CounterClicks)
}

func (r *MetricsRecorder) record(ctx context.Context, campaignID string, counter domain.Counter) (_ int64, err error) {
	ctx, span := startSpan(ctx, "MetricsRecorder.Record"+string(counter), campaignAttr(campaignID))
	defer func() { endSpan(span, err) }()

	if campaignID == "" {
		return 0, domain.NewNotFound(campaignID)
	}
	n, err := r.repo.IncrementCounter(ctx, campaignID, counter, r.now())
	if err != nil {
		return 0, fmt.Errorf("record %s: %w", counter, err)
	}
	r.metrics.CounterRecorded(counter)
	return n, nil
}
