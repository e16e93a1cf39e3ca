package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-campaigns/internal/config/configs"
	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/db"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func openTempRepo(t *testing.T) *CampaignRepository {
	t.Helper()

	sqlDB, err := db.OpenSQLite(context.Background(), configs.SQLite{Path: filepath.Join(t.TempDir(), "campaigns.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.MigrateSQLite(sqlDB))
	return NewCampaignRepository(sqlDB)
}

func newCampaign(id string, created time.Time) domain.Campaign {
	return domain.Campaign{
		ID:            id,
		AdvertiserID:  "adv-1",
		AdType:        domain.AdTypeSponsoredListing,
		AdContent:     "<b>Fresh produce</b>",
		ContentKind:   domain.ContentKindMarkup,
		AdPlacement:   domain.PlacementCategoryPage,
		Title:         "Fresh produce",
		Description:   "Weekly deals",
		TargetURL:     "https://shop.example.com",
		StartDate:     fixedNow.Add(-24 * time.Hour),
		EndDate:       fixedNow.Add(30 * 24 * time.Hour),
		Budget:        decimal.RequireFromString("1200.50"),
		Spend:         decimal.RequireFromString("10.25"),
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func assertSameCampaign(t *testing.T, want, got domain.Campaign) {
	t.Helper()
	assert.True(t, want.Budget.Equal(got.Budget), "budget %s != %s", want.Budget, got.Budget)
	assert.True(t, want.Spend.Equal(got.Spend), "spend %s != %s", want.Spend, got.Spend)
	want.Budget, got.Budget = decimal.Zero, decimal.Zero
	want.Spend, got.Spend = decimal.Zero, decimal.Zero
	assert.Equal(t, want, got)
}

func TestCreateGetRoundTrip(t *testing.T) {
	repo := openTempRepo(t)
	ctx := context.Background()
	want := newCampaign("c1", fixedNow)

	require.NoError(t, repo.Create(ctx, want))
	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assertSameCampaign(t, want, *got)
}

func TestCreateDuplicateConflicts(t *testing.T) {
	repo := openTempRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCampaign("c1", fixedNow)))
	err := repo.Create(ctx, newCampaign("c1", fixedNow))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGetMissing(t *testing.T) {
	repo := openTempRepo(t)

	_, err := repo.Get(context.Background(), "nope")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.Key)
}

func TestListFiltersNewestFirst(t *testing.T) {
	repo := openTempRepo(t)
	ctx := context.Background()

	old := newCampaign("old", fixedNow.Add(-time.Hour))
	mid := newCampaign("mid", fixedNow)
	mid.Status = domain.StatusActive
	other := newCampaign("other", fixedNow.Add(time.Hour))
	other.AdvertiserID = "adv-2"
	for _, c := range []domain.Campaign{old, mid, other} {
		require.NoError(t, repo.Create(ctx, c))
	}

	all, err := repo.List(ctx, domain.CampaignFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"other", "mid", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	byAdv, err := repo.List(ctx, domain.CampaignFilter{AdvertiserID: "adv-1"})
	require.NoError(t, err)
	assert.Len(t, byAdv, 2)

	active, err := repo.List(ctx, domain.CampaignFilter{Status: domain.StatusActive, AdvertiserID: "adv-1"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "mid", active[0].ID)

	none, err := repo.List(ctx, domain.CampaignFilter{Status: domain.StatusRejected})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdate(t *testing.T) {
	repo := openTempRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newCampaign("c1", fixedNow)))

	later := fixedNow.Add(time.Minute)
	updated, err := repo.Update(ctx, "c1", func(c *domain.Campaign) (bool, error) {
		c.Title = "Renamed"
		c.Spend = decimal.RequireFromString("20")
		c.UpdatedAt = later
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assertSameCampaign(t, *updated, *got)
	assert.Equal(t, later, got.UpdatedAt)
}

func TestUpdateAbortLeavesRecord(t *testing.T) {
	repo := openTempRepo(t)
	ctx := context.Background()
	original := newCampaign("c1", fixedNow)
	require.NoError(t, repo.Create(ctx, original))

	boom := errors.New("rejected")
	_, err := repo.Update(ctx, "c1", func(c *domain.Campaign) (bool, error) {
		c.Title = "Half applied"
		return false, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.Update(ctx, "c1", func(c *domain.Campaign) (bool, error) {
		c.Title = "Unchanged flag"
		return false, nil
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assertSameCampaign(t, original, *got)
}

func TestUpdateMissing(t *testing.T) {
	repo := openTempRepo(t)

	_, err := repo.Update(context.Background(), "nope", func(*domain.Campaign) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateByPaymentReference(t *testing.T) {
	repo := openTempRepo(t)
	ctx := context.Background()
	c := newCampaign("c1", fixedNow)
	c.PaymentTransactionID = "PAYNOW_abc"
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.Create(ctx, newCampaign("c2", fixedNow)))

	got, err := repo.UpdateByPaymentReference(ctx, "PAYNOW_abc", func(c *domain.Campaign) (bool, error) {
		return domain.ConfirmPayment(c, fixedNow.Add(time.Minute)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, domain.StatusActive, got.Status)

	_, err = repo.UpdateByPaymentReference(ctx, "PAYNOW_missing", func(*domain.Campaign) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := openTempRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newCampaign("c1", fixedNow)))

	require.NoError(t, repo.Delete(ctx, "c1"))
	assert.ErrorIs(t, repo.Delete(ctx, "c1"), domain.ErrNotFound)
	_, err := repo.Get(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIncrementCounterConcurrent(t *testing.T) {
	repo := openTempRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newCampaign("c1", fixedNow)))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementCounter(ctx, "c1", domain.CounterImpressions, fixedNow); err != nil {
				t.Errorf("increment impressions: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementCounter(ctx, "c1", domain.CounterClicks, fixedNow); err != nil {
				t.Errorf("increment clicks: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.Impressions)
	assert.Equal(t, int64(n), got.Clicks)
	assert.Equal(t, fixedNow, got.UpdatedAt)
}

func TestIncrementCounterMissingDoesNotCreate(t *testing.T) {
	repo := openTempRepo(t)
	ctx := context.Background()

	_, err := repo.IncrementCounter(ctx, "ghost", domain.CounterClicks, fixedNow)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := repo.List(ctx, domain.CampaignFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateRollsBackOnQueryFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM campaigns WHERE id = ?").
		WithArgs("c1").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	repo := NewCampaignRepository(sqlDB)
	_, err = repo.Update(context.Background(), "c1", func(*domain.Campaign) (bool, error) { return true, nil })

	var serr *domain.StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "update campaign", serr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRollsBackOnWriteFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	c := newCampaign("c1", fixedNow)
	rows := sqlmock.NewRows([]string{
		"id", "advertiser_id", "ad_type", "ad_content", "content_kind", "ad_placement",
		"title", "description", "target_url", "start_date", "end_date",
		"budget", "spend", "impressions", "clicks",
		"status", "payment_status", "payment_transaction_id", "created_at", "updated_at",
	}).AddRow(
		c.ID, c.AdvertiserID, string(c.AdType), c.AdContent, string(c.ContentKind), string(c.AdPlacement),
		c.Title, c.Description, c.TargetURL, toMillis(c.StartDate), toMillis(c.EndDate),
		c.Budget.String(), c.Spend.String(), int64(0), int64(0),
		string(c.Status), string(c.PaymentStatus), "", toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM campaigns").WithArgs("c1").WillReturnRows(rows)
	mock.ExpectExec("UPDATE campaigns SET").WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	repo := NewCampaignRepository(sqlDB)
	_, err = repo.Update(context.Background(), "c1", func(c *domain.Campaign) (bool, error) {
		c.Title = "New"
		return true, nil
	})

	var serr *domain.StoreError
	require.ErrorAs(t, err, &serr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementCounterStoreFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectQuery("UPDATE campaigns SET clicks = clicks \\+ 1").
		WillReturnError(errors.New("disk full"))

	repo := NewCampaignRepository(sqlDB)
	_, err = repo.IncrementCounter(context.Background(), "c1", domain.CounterClicks, fixedNow)

	var serr *domain.StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "increment clicks", serr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}
