// Package sqlite provides a SQLite-backed campaign store for single-node
// deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/core/port"
)

const campaignColumns = `
	id, advertiser_id, ad_type, ad_content, content_kind, ad_placement,
	title, description, target_url, start_date, end_date,
	budget, spend, impressions, clicks,
	status, payment_status, payment_transaction_id, created_at, updated_at`

// CampaignRepository implements port.CampaignRepository on SQLite.
// Timestamps are stored as Unix milliseconds and money as decimal text.
// Transactions are opened with an immediate write lock, so a
// read-modify-write never interleaves with another writer.
type CampaignRepository struct {
	db *sql.DB
}

var _ port.CampaignRepository = (*CampaignRepository)(nil)

// NewCampaignRepository wraps an open database handle. The schema must
// already be migrated.
func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Create inserts a campaign. A duplicate id fails with domain.ErrConflict.
func (r *CampaignRepository) Create(ctx context.Context, c domain.Campaign) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaigns (`+campaignColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AdvertiserID, string(c.AdType), c.AdContent, string(c.ContentKind), string(c.AdPlacement),
		c.Title, c.Description, c.TargetURL, toMillis(c.StartDate), toMillis(c.EndDate),
		c.Budget.String(), c.Spend.String(), c.Impressions, c.Clicks,
		string(c.Status), string(c.PaymentStatus), c.PaymentTransactionID, toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("campaign %s: %w", c.ID, domain.ErrConflict)
	}
	return domain.WrapStore("create campaign", err)
}

// Get returns a campaign by id.
func (r *CampaignRepository) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound(id)
	}
	if err != nil {
		return nil, domain.WrapStore("get campaign", err)
	}
	return c, nil
}

// List returns campaigns matching filter, newest first.
func (r *CampaignRepository) List(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.AdvertiserID != "" {
		conds = append(conds, "advertiser_id = ?")
		args = append(args, filter.AdvertiserID)
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStore("list campaigns", err)
	}
	defer rows.Close()

	campaigns := make([]domain.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, domain.WrapStore("list campaigns", err)
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStore("list campaigns", err)
	}
	return campaigns, nil
}

// Update applies mutate to the campaign inside one write transaction.
func (r *CampaignRepository) Update(ctx context.Context, id string, mutate port.MutateFunc) (*domain.Campaign, error) {
	return r.update(ctx, "update campaign", `id = ?`, id, mutate)
}

// UpdateByPaymentReference is Update keyed by the gateway reference. When a
// reference was reused the most recently updated campaign wins.
func (r *CampaignRepository) UpdateByPaymentReference(ctx context.Context, reference string, mutate port.MutateFunc) (*domain.Campaign, error) {
	return r.update(ctx, "update campaign by payment reference",
		`payment_transaction_id = ? ORDER BY updated_at DESC LIMIT 1`, reference, mutate)
}

func (r *CampaignRepository) update(ctx context.Context, op, where, key string, mutate port.MutateFunc) (_ *domain.Campaign, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.WrapStore(op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	c, err := scanCampaign(tx.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE `+where, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound(key)
	}
	if err != nil {
		return nil, domain.WrapStore(op, err)
	}

	changed, err := mutate(c)
	if err != nil {
		return nil, err
	}
	if changed {
		_, err = tx.ExecContext(ctx, `
			UPDATE campaigns SET
				ad_type = ?, ad_content = ?, content_kind = ?, ad_placement = ?,
				title = ?, description = ?, target_url = ?, start_date = ?, end_date = ?,
				budget = ?, spend = ?, status = ?, payment_status = ?,
				payment_transaction_id = ?, updated_at = ?
			WHERE id = ?`,
			string(c.AdType), c.AdContent, string(c.ContentKind), string(c.AdPlacement),
			c.Title, c.Description, c.TargetURL, toMillis(c.StartDate), toMillis(c.EndDate),
			c.Budget.String(), c.Spend.String(), string(c.Status), string(c.PaymentStatus),
			c.PaymentTransactionID, toMillis(c.UpdatedAt),
			c.ID,
		)
		if err != nil {
			return nil, domain.WrapStore(op, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, domain.WrapStore(op, err)
	}
	return c, nil
}

// Delete removes the campaign.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id)
	if err != nil {
		return domain.WrapStore("delete campaign", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStore("delete campaign", err)
	}
	if n == 0 {
		return domain.NewNotFound(id)
	}
	return nil
}

// IncrementCounter adds one to the counter column and returns the new value.
func (r *CampaignRepository) IncrementCounter(ctx context.Context, id string, counter domain.Counter, at time.Time) (int64, error) {
	var column string
	switch counter {
	case domain.CounterImpressions:
		column = "impressions"
	case domain.CounterClicks:
		column = "clicks"
	default:
		return 0, fmt.Errorf("unknown counter %q", counter)
	}

	var n int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE campaigns SET `+column+` = `+column+` + 1, updated_at = ? WHERE id = ? RETURNING `+column,
		toMillis(at), id,
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NewNotFound(id)
	}
	if err != nil {
		return 0, domain.WrapStore("increment "+column, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var c domain.Campaign
	var adType, contentKind, placement, status, paymentStatus, budget, spend string
	var startMs, endMs, createdMs, updatedMs int64
	err := row.Scan(
		&c.ID, &c.AdvertiserID, &adType, &c.AdContent, &contentKind, &placement,
		&c.Title, &c.Description, &c.TargetURL, &startMs, &endMs,
		&budget, &spend, &c.Impressions, &c.Clicks,
		&status, &paymentStatus, &c.PaymentTransactionID, &createdMs, &updatedMs,
	)
	if err != nil {
		return nil, err
	}
	if c.Budget, err = decimal.NewFromString(budget); err != nil {
		return nil, fmt.Errorf("budget: %w", err)
	}
	if c.Spend, err = decimal.NewFromString(spend); err != nil {
		return nil, fmt.Errorf("spend: %w", err)
	}
	c.AdType = domain.AdType(adType)
	c.ContentKind = domain.ContentKind(contentKind)
	c.AdPlacement = domain.AdPlacement(placement)
	c.Status = domain.Status(status)
	c.PaymentStatus = domain.PaymentStatus(paymentStatus)
	c.StartDate = fromMillis(startMs)
	c.EndDate = fromMillis(endMs)
	c.CreatedAt = fromMillis(createdMs)
	c.UpdatedAt = fromMillis(updatedMs)
	return &c, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
