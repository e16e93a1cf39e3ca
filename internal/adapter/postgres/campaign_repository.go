package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/core/port"
)

const uniqueViolation = "23505"

// Money columns travel as text in both directions so that NUMERIC values
// keep their exact scale.
const campaignColumns = `
	id, advertiser_id, ad_type, ad_content, content_kind, ad_placement,
	title, description, target_url, start_date, end_date,
	budget::text, spend::text, impressions, clicks,
	status, payment_status, payment_transaction_id, created_at, updated_at`

// CampaignRepository implements port.CampaignRepository using pgxpool for
// PostgreSQL. Read-modify-write operations lock the row with
// SELECT ... FOR UPDATE; counters use a single UPDATE ... RETURNING.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

var _ port.CampaignRepository = (*CampaignRepository)(nil)

// NewCampaignRepository returns a new repository instance.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// Create inserts a campaign. A duplicate id fails with domain.ErrConflict.
func (r *CampaignRepository) Create(ctx context.Context, c domain.Campaign) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaigns (
			id, advertiser_id, ad_type, ad_content, content_kind, ad_placement,
			title, description, target_url, start_date, end_date,
			budget, spend, impressions, clicks,
			status, payment_status, payment_transaction_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		c.ID, c.AdvertiserID, c.AdType, c.AdContent, c.ContentKind, c.AdPlacement,
		c.Title, c.Description, c.TargetURL, c.StartDate, c.EndDate,
		c.Budget.String(), c.Spend.String(), c.Impressions, c.Clicks,
		c.Status, c.PaymentStatus, c.PaymentTransactionID, c.CreatedAt, c.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("campaign %s: %w", c.ID, domain.ErrConflict)
	}
	return domain.WrapStore("create campaign", err)
}

// Get returns a campaign by id.
func (r *CampaignRepository) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFound(id)
	}
	if err != nil {
		return nil, domain.WrapStore("get campaign", err)
	}
	return c, nil
}

// List returns campaigns matching filter, newest first.
func (r *CampaignRepository) List(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, error) {
	where, args := listConditions(filter)
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns`+where+` ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, domain.WrapStore("list campaigns", err)
	}
	campaigns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		c, err := scanCampaign(row)
		if err != nil {
			return domain.Campaign{}, err
		}
		return *c, nil
	})
	if err != nil {
		return nil, domain.WrapStore("list campaigns", err)
	}
	return campaigns, nil
}

// Update locks the campaign row, applies mutate and writes the result in
// the same transaction.
func (r *CampaignRepository) Update(ctx context.Context, id string, mutate port.MutateFunc) (*domain.Campaign, error) {
	return r.update(ctx, "update campaign", `id = $1`, id, mutate)
}

// UpdateByPaymentReference is Update keyed by the gateway reference. When a
// reference was reused the most recently updated campaign wins.
func (r *CampaignRepository) UpdateByPaymentReference(ctx context.Context, reference string, mutate port.MutateFunc) (*domain.Campaign, error) {
	return r.update(ctx, "update campaign by payment reference",
		`payment_transaction_id = $1 ORDER BY updated_at DESC LIMIT 1`, reference, mutate)
}

func (r *CampaignRepository) update(ctx context.Context, op, where, key string, mutate port.MutateFunc) (_ *domain.Campaign, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, domain.WrapStore(op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// lock campaign
	c, err := scanCampaign(tx.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE `+where+` FOR UPDATE`, key))
	if errors.Is(err, pgx.ErrNoRows) {
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
		_, err = tx.Exec(ctx, `
			UPDATE campaigns SET
				ad_type = $2, ad_content = $3, content_kind = $4, ad_placement = $5,
				title = $6, description = $7, target_url = $8, start_date = $9, end_date = $10,
				budget = $11, spend = $12, status = $13, payment_status = $14,
				payment_transaction_id = $15, updated_at = $16
			WHERE id = $1`,
			c.ID, c.AdType, c.AdContent, c.ContentKind, c.AdPlacement,
			c.Title, c.Description, c.TargetURL, c.StartDate, c.EndDate,
			c.Budget.String(), c.Spend.String(), c.Status, c.PaymentStatus,
			c.PaymentTransactionID, c.UpdatedAt,
		)
		if err != nil {
			return nil, domain.WrapStore(op, err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, domain.WrapStore(op, err)
	}
	return c, nil
}

// Delete removes the campaign.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return domain.WrapStore("delete campaign", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(id)
	}
	return nil
}

// IncrementCounter adds one to the counter column and returns the new value.
func (r *CampaignRepository) IncrementCounter(ctx context.Context, id string, counter domain.Counter, at time.Time) (int64, error) {
	column, err := counterColumn(counter)
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.pool.QueryRow(ctx,
		`UPDATE campaigns SET `+column+` = `+column+` + 1, updated_at = $2 WHERE id = $1 RETURNING `+column,
		id, at.UTC(),
	).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.NewNotFound(id)
	}
	if err != nil {
		return 0, domain.WrapStore("increment "+column, err)
	}
	return n, nil
}

// counterColumn maps a counter onto its column. Column names are never
// taken from input.
func counterColumn(counter domain.Counter) (string, error) {
	switch counter {
	case domain.CounterImpressions:
		return "impressions", nil
	case domain.CounterClicks:
		return "clicks", nil
	default:
		return "", fmt.Errorf("unknown counter %q", counter)
	}
}

func listConditions(filter domain.CampaignFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AdvertiserID != "" {
		args = append(args, filter.AdvertiserID)
		conds = append(conds, fmt.Sprintf("advertiser_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var (
		c             domain.Campaign
		budget, spend string
	)
	err := row.Scan(
		&c.ID, &c.AdvertiserID, &c.AdType, &c.AdContent, &c.ContentKind, &c.AdPlacement,
		&c.Title, &c.Description, &c.TargetURL, &c.StartDate, &c.EndDate,
		&budget, &spend, &c.Impressions, &c.Clicks,
		&c.Status, &c.PaymentStatus, &c.PaymentTransactionID, &c.CreatedAt, &c.UpdatedAt,
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
	c.StartDate = c.StartDate.UTC()
	c.EndDate = c.EndDate.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}
