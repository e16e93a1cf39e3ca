// Package redis stores campaigns as Redis hashes.
//
// Key layout:
//
//	campaign:{id}           hash with the campaign record
//	campaign:{id}:counters  hash with impressions, clicks and the last tracking time
//	campaigns:created       sorted set of ids scored by creation time (ms)
//	campaign:payref:{ref}   id of the campaign holding a payment reference
//
// Counters live apart from the record so that tracking traffic never
// invalidates a WATCH on the record.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/core/port"
)

const (
	createdIndexKey = "campaigns:created"

	fieldImpressions = "impressions"
	fieldClicks      = "clicks"
	fieldUpdatedAt   = "updated_at"
)

// incrementScript bumps one counter of an existing campaign. KEYS[1] is
// the record, KEYS[2] its counters. It returns -1 when the record does not
// exist so that no hash is ever created here.
var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
local n = redis.call('HINCRBY', KEYS[2], ARGV[1], 1)
redis.call('HSET', KEYS[2], 'updated_at', ARGV[2])
return n
`)

func campaignKey(id string) string { return "campaign:" + id }

func countersKey(id string) string { return "campaign:" + id + ":counters" }

func paymentRefKey(ref string) string { return "campaign:payref:" + ref }

// CampaignRepository implements port.CampaignRepository on Redis. Counters
// are bumped server-side by a Lua script. Other updates run an optimistic
// WATCH/MULTI loop that retries up to maxRetries times before failing with
// domain.ErrConflict.
type CampaignRepository struct {
	client     *redis.Client
	maxRetries int
}

var _ port.CampaignRepository = (*CampaignRepository)(nil)

// NewCampaignRepository creates a repository. maxRetries below one is
// treated as one.
func NewCampaignRepository(client *redis.Client, maxRetries int) *CampaignRepository {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &CampaignRepository{client: client, maxRetries: maxRetries}
}

// Create stores a new campaign. A duplicate id fails with domain.ErrConflict.
func (r *CampaignRepository) Create(ctx context.Context, c domain.Campaign) error {
	key := campaignKey(c.ID)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("campaign %s: %w", c.ID, domain.ErrConflict)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			fields := encodeCampaign(&c)
			fields["created_at"] = c.CreatedAt.UnixMilli()
			p.HSet(ctx, key, fields)
			p.HSet(ctx, countersKey(c.ID), fieldImpressions, c.Impressions, fieldClicks, c.Clicks)
			p.ZAdd(ctx, createdIndexKey, redis.Z{Score: float64(c.CreatedAt.UnixMilli()), Member: c.ID})
			if c.PaymentTransactionID != "" {
				p.Set(ctx, paymentRefKey(c.PaymentTransactionID), c.ID, 0)
			}
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("campaign %s: %w", c.ID, domain.ErrConflict)
	}
	return domain.WrapStore("create campaign", err)
}

// Get returns a campaign by id.
func (r *CampaignRepository) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	var record, counters *redis.MapStringStringCmd
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		record = p.HGetAll(ctx, campaignKey(id))
		counters = p.HGetAll(ctx, countersKey(id))
		return nil
	})
	if err != nil {
		return nil, domain.WrapStore("get campaign", err)
	}
	if len(record.Val()) == 0 {
		return nil, domain.NewNotFound(id)
	}
	c, err := decodeCampaign(id, record.Val(), counters.Val())
	if err != nil {
		return nil, domain.WrapStore("get campaign", err)
	}
	return c, nil
}

// List returns campaigns matching filter, newest first. Campaigns deleted
// while the list is read are skipped.
func (r *CampaignRepository) List(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, error) {
	ids, err := r.client.ZRevRange(ctx, createdIndexKey, 0, -1).Result()
	if err != nil {
		return nil, domain.WrapStore("list campaigns", err)
	}

	records := make([]*redis.MapStringStringCmd, len(ids))
	counters := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			records[i] = p.HGetAll(ctx, campaignKey(id))
			counters[i] = p.HGetAll(ctx, countersKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, domain.WrapStore("list campaigns", err)
	}

	campaigns := make([]domain.Campaign, 0, len(ids))
	for i, cmd := range records {
		vals := cmd.Val()
		if len(vals) == 0 {
			continue
		}
		c, err := decodeCampaign(ids[i], vals, counters[i].Val())
		if err != nil {
			return nil, domain.WrapStore("list campaigns", err)
		}
		if filter.Match(c) {
			campaigns = append(campaigns, *c)
		}
	}
	return campaigns, nil
}

// Update applies mutate under WATCH and retries when another writer touched
// the record in between. Counter increments do not count as such a write.
func (r *CampaignRepository) Update(ctx context.Context, id string, mutate port.MutateFunc) (*domain.Campaign, error) {
	return r.update(ctx, "update campaign", id, id, mutate)
}

// UpdateByPaymentReference is Update keyed by the gateway reference.
func (r *CampaignRepository) UpdateByPaymentReference(ctx context.Context, reference string, mutate port.MutateFunc) (*domain.Campaign, error) {
	const op = "update campaign by payment reference"
	id, err := r.client.Get(ctx, paymentRefKey(reference)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.NewNotFound(reference)
	}
	if err != nil {
		return nil, domain.WrapStore(op, err)
	}
	return r.update(ctx, op, id, reference, func(c *domain.Campaign) (bool, error) {
		// the index may briefly trail a reference change
		if c.PaymentTransactionID != reference {
			return false, domain.NewNotFound(reference)
		}
		return mutate(c)
	})
}

func (r *CampaignRepository) update(ctx context.Context, op, id, lookupKey string, mutate port.MutateFunc) (*domain.Campaign, error) {
	key := campaignKey(id)
	var (
		out       *domain.Campaign
		mutateErr error
	)
	txf := func(tx *redis.Tx) error {
		vals, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(vals) == 0 {
			return domain.NewNotFound(lookupKey)
		}
		counters, err := tx.HGetAll(ctx, countersKey(id)).Result()
		if err != nil {
			return err
		}
		c, err := decodeCampaign(id, vals, counters)
		if err != nil {
			return err
		}
		prevRef := c.PaymentTransactionID

		changed, err := mutate(c)
		if err != nil {
			mutateErr = err
			return err
		}
		if !changed {
			out = c
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, encodeCampaign(c))
			if c.PaymentTransactionID != prevRef {
				if prevRef != "" {
					p.Del(ctx, paymentRefKey(prevRef))
				}
				if c.PaymentTransactionID != "" {
					p.Set(ctx, paymentRefKey(c.PaymentTransactionID), id, 0)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		out = c
		return nil
	}

	for i := 0; i < r.maxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if mutateErr != nil {
			return nil, mutateErr
		}
		if err != nil {
			return nil, domain.WrapStore(op, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s %s after %d attempts: %w", op, id, r.maxRetries, domain.ErrConflict)
}

// Delete removes the campaign with its index entries.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	key := campaignKey(id)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		ref, err := tx.HGet(ctx, key, "payment_transaction_id").Result()
		if errors.Is(err, redis.Nil) {
			n, err := tx.Exists(ctx, key).Result()
			if err != nil {
				return err
			}
			if n == 0 {
				return domain.NewNotFound(id)
			}
		} else if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, key, countersKey(id))
			p.ZRem(ctx, createdIndexKey, id)
			if ref != "" {
				p.Del(ctx, paymentRefKey(ref))
			}
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("delete campaign %s: %w", id, domain.ErrConflict)
	}
	return domain.WrapStore("delete campaign", err)
}

// IncrementCounter bumps the counter server-side and returns the new value.
func (r *CampaignRepository) IncrementCounter(ctx context.Context, id string, counter domain.Counter, at time.Time) (int64, error) {
	var field string
	switch counter {
	case domain.CounterImpressions:
		field = fieldImpressions
	case domain.CounterClicks:
		field = fieldClicks
	default:
		return 0, fmt.Errorf("unknown counter %q", counter)
	}

	n, err := incrementScript.Run(ctx, r.client, []string{campaignKey(id), countersKey(id)}, field, at.UnixMilli()).Int64()
	if err != nil {
		return 0, domain.WrapStore("increment "+field, err)
	}
	if n < 0 {
		return 0, domain.NewNotFound(id)
	}
	return n, nil
}

// encodeCampaign returns the mutable record fields of c. Counters are kept
// in their own hash and created_at is written only on create.
func encodeCampaign(c *domain.Campaign) map[string]any {
	return map[string]any{
		"advertiser_id":          c.AdvertiserID,
		"ad_type":                string(c.AdType),
		"ad_content":             c.AdContent,
		"content_kind":           string(c.ContentKind),
		"ad_placement":           string(c.AdPlacement),
		"title":                  c.Title,
		"description":            c.Description,
		"target_url":             c.TargetURL,
		"start_date":             c.StartDate.UnixMilli(),
		"end_date":               c.EndDate.UnixMilli(),
		"budget":                 c.Budget.String(),
		"spend":                  c.Spend.String(),
		"status":                 string(c.Status),
		"payment_status":         string(c.PaymentStatus),
		"payment_transaction_id": c.PaymentTransactionID,
		fieldUpdatedAt:           c.UpdatedAt.UnixMilli(),
	}
}

// decodeCampaign builds a campaign from its record and counters hashes.
// UpdatedAt is the later of the last record write and the last tracked
// event.
func decodeCampaign(id string, vals, counters map[string]string) (*domain.Campaign, error) {
	d := decoder{vals: vals}
	cd := decoder{vals: counters}
	c := &domain.Campaign{
		ID:                   id,
		AdvertiserID:         vals["advertiser_id"],
		AdType:               domain.AdType(vals["ad_type"]),
		AdContent:            vals["ad_content"],
		ContentKind:          domain.ContentKind(vals["content_kind"]),
		AdPlacement:          domain.AdPlacement(vals["ad_placement"]),
		Title:                vals["title"],
		Description:          vals["description"],
		TargetURL:            vals["target_url"],
		StartDate:            d.time("start_date"),
		EndDate:              d.time("end_date"),
		Budget:               d.decimal("budget"),
		Spend:                d.decimal("spend"),
		Impressions:          cd.int(fieldImpressions),
		Clicks:               cd.int(fieldClicks),
		Status:               domain.Status(vals["status"]),
		PaymentStatus:        domain.PaymentStatus(vals["payment_status"]),
		PaymentTransactionID: vals["payment_transaction_id"],
		CreatedAt:            d.time("created_at"),
		UpdatedAt:            d.time(fieldUpdatedAt),
	}
	if tracked := cd.time(fieldUpdatedAt); tracked.After(c.UpdatedAt) {
		c.UpdatedAt = tracked
	}
	if err := errors.Join(d.err, cd.err); err != nil {
		return nil, fmt.Errorf("decode campaign %s: %w", id, err)
	}
	return c, nil
}

// decoder parses hash fields and keeps the first error.
type decoder struct {
	vals map[string]string
	err  error
}

func (d *decoder) int(field string) int64 {
	v, ok := d.vals[field]
	if !ok || d.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}
	return n
}

func (d *decoder) time(field string) time.Time {
	if _, ok := d.vals[field]; !ok {
		return time.Time{}
	}
	return time.UnixMilli(d.int(field)).UTC()
}

func (d *decoder) decimal(field string) decimal.Decimal {
	v, ok := d.vals[field]
	if !ok || d.err != nil {
		return decimal.Zero
	}
	dec, err := decimal.NewFromString(v)
	if err != nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}
	return dec
}
