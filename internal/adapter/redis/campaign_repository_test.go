package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-campaigns/internal/core/domain"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func newCampaign(id string, created time.Time) domain.Campaign {
	return domain.Campaign{
		ID:            id,
		AdvertiserID:  "adv-1",
		AdType:        domain.AdTypeFeaturedVendor,
		AdContent:     "https://cdn.example.com/vendor.png",
		ContentKind:   domain.ContentKindURL,
		AdPlacement:   domain.PlacementVendorListing,
		Title:         "Featured vendor",
		StartDate:     fixedNow.Add(-24 * time.Hour),
		EndDate:       fixedNow.Add(10 * 24 * time.Hour),
		Budget:        decimal.RequireFromString("300"),
		Spend:         decimal.Zero,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestCreateGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCampaignRepository(client, 8)
	ctx := context.Background()
	want := newCampaign("c1", fixedNow)
	want.PaymentTransactionID = "pi_1"

	require.NoError(t, repo.Create(ctx, want))
	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)

	assert.True(t, want.Budget.Equal(got.Budget))
	assert.True(t, got.Spend.IsZero())
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.StartDate, got.StartDate)
	assert.Equal(t, want.CreatedAt, got.CreatedAt)
	assert.Equal(t, "pi_1", got.PaymentTransactionID)

	assert.ErrorIs(t, repo.Create(ctx, want), domain.ErrConflict)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListNewestFirstWithFilter(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCampaignRepository(client, 8)
	ctx := context.Background()

	a := newCampaign("a", fixedNow.Add(-2*time.Hour))
	b := newCampaign("b", fixedNow.Add(-time.Hour))
	b.Status = domain.StatusActive
	c := newCampaign("c", fixedNow)
	c.AdvertiserID = "adv-2"
	for _, cp := range []domain.Campaign{a, b, c} {
		require.NoError(t, repo.Create(ctx, cp))
	}

	all, err := repo.List(ctx, domain.CampaignFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)

	active, err := repo.List(ctx, domain.CampaignFilter{Status: domain.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "b", active[0].ID)

	byAdv, err := repo.List(ctx, domain.CampaignFilter{AdvertiserID: "adv-2"})
	require.NoError(t, err)
	require.Len(t, byAdv, 1)
	assert.Equal(t, "c", byAdv[0].ID)
}

func TestIncrementCounterConcurrent(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCampaignRepository(client, 8)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newCampaign("c1", fixedNow)))

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementCounter(ctx, "c1", domain.CounterImpressions, fixedNow.Add(time.Minute)); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.Impressions)
	assert.Zero(t, got.Clicks)
	assert.Equal(t, fixedNow.Add(time.Minute), got.UpdatedAt)
}

func TestIncrementCounterMissingDoesNotCreate(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewCampaignRepository(client, 8)

	_, err := repo.IncrementCounter(context.Background(), "ghost", domain.CounterClicks, fixedNow)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, mr.Exists(campaignKey("ghost")))
	assert.False(t, mr.Exists(countersKey("ghost")))
}

func TestUpdatesProgressUnderTrackingLoad(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCampaignRepository(client, 2)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newCampaign("c1", fixedNow)))

	var (
		wg      sync.WaitGroup
		stop    atomic.Bool
		tracked atomic.Int64
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				if _, err := repo.IncrementCounter(ctx, "c1", domain.CounterImpressions, fixedNow); err == nil {
					tracked.Add(1)
				}
			}
		}()
	}

	one := decimal.NewFromInt(1)
	const updates = 50
	for i := 0; i < updates; i++ {
		_, err := repo.Update(ctx, "c1", func(c *domain.Campaign) (bool, error) {
			c.Spend = c.Spend.Add(one)
			return true, nil
		})
		if !assert.NoError(t, err) {
			break
		}
	}
	stop.Store(true)
	wg.Wait()

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "50", got.Spend.String())
	assert.Equal(t, tracked.Load(), got.Impressions)
}

func TestUpdatedAtFollowsLatestWrite(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCampaignRepository(client, 4)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newCampaign("c1", fixedNow)))

	_, err := repo.IncrementCounter(ctx, "c1", domain.CounterClicks, fixedNow.Add(time.Hour))
	require.NoError(t, err)
	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Hour), got.UpdatedAt)

	_, err = repo.Update(ctx, "c1", func(c *domain.Campaign) (bool, error) {
		c.Title = "Renamed"
		c.UpdatedAt = fixedNow.Add(2 * time.Hour)
		return true, nil
	})
	require.NoError(t, err)
	got, err = repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(2*time.Hour), got.UpdatedAt)
	assert.Equal(t, int64(1), got.Clicks)
}

func TestConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCampaignRepository(client, 1000)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newCampaign("c1", fixedNow)))

	const n = 20
	one := decimal.NewFromInt(1)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "c1", func(c *domain.Campaign) (bool, error) {
				c.Spend = c.Spend.Add(one)
				return true, nil
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementCounter(ctx, "c1", domain.CounterClicks, fixedNow); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "20", got.Spend.String())
	assert.Equal(t, int64(n), got.Clicks)
}

func TestUpdateConflictAfterRetries(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCampaignRepository(client, 2)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newCampaign("c1", fixedNow)))

	attempts := 0
	_, err := repo.Update(ctx, "c1", func(c *domain.Campaign) (bool, error) {
		attempts++
		// a competing writer touches the record between read and write
		require.NoError(t, client.HSet(ctx, campaignKey("c1"), "title", "someone else").Err())
		c.Title = "mine"
		return true, nil
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 2, attempts)
}

func TestUpdateMutateErrorIsReturnedAsIs(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCampaignRepository(client, 4)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newCampaign("c1", fixedNow)))

	verr := domain.Invalid("title", "is required")
	_, err := repo.Update(ctx, "c1", func(*domain.Campaign) (bool, error) { return false, verr })
	assert.Same(t, verr, err)
}

func TestUpdateByPaymentReferenceFollowsIndex(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCampaignRepository(client, 8)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newCampaign("c1", fixedNow)))

	_, err := repo.Update(ctx, "c1", func(c *domain.Campaign) (bool, error) {
		return domain.InitiatePayment(c, "PAYNOW_1", fixedNow), nil
	})
	require.NoError(t, err)

	got, err := repo.UpdateByPaymentReference(ctx, "PAYNOW_1", func(c *domain.Campaign) (bool, error) {
		return domain.ConfirmPayment(c, fixedNow.Add(time.Minute)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)

	// a new attempt replaces the reference and retires the old one
	_, err = repo.Update(ctx, "c1", func(c *domain.Campaign) (bool, error) {
		return domain.InitiatePayment(c, "PAYNOW_2", fixedNow), nil
	})
	require.NoError(t, err)

	_, err = repo.UpdateByPaymentReference(ctx, "PAYNOW_1", func(*domain.Campaign) (bool, error) { return true, nil })
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "PAYNOW_1", nf.Key)
}

func TestDeleteRemovesIndexes(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewCampaignRepository(client, 8)
	ctx := context.Background()
	c := newCampaign("c1", fixedNow)
	c.PaymentTransactionID = "pi_1"
	require.NoError(t, repo.Create(ctx, c))

	require.NoError(t, repo.Delete(ctx, "c1"))
	assert.False(t, mr.Exists(campaignKey("c1")))
	assert.False(t, mr.Exists(countersKey("c1")))
	assert.False(t, mr.Exists(paymentRefKey("pi_1")))

	all, err := repo.List(ctx, domain.CampaignFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.ErrorIs(t, repo.Delete(ctx, "c1"), domain.ErrNotFound)
}

func TestStoreErrorWhenServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewCampaignRepository(client, 8)
	mr.Close()

	_, err = repo.Get(context.Background(), "c1")
	var serr *domain.StoreError
	assert.True(t, errors.As(err, &serr))
}
