package port

import (
	"context"
	"time"

	"ad-campaigns/internal/core/domain"
)

// MutateFunc changes a campaign inside an atomic read-modify-write. It
// returns false when the campaign is already in the desired state, in which
// case nothing is written. Returning an error aborts the write.
type MutateFunc func(c *domain.Campaign) (changed bool, err error)

// CampaignRepository defines the persistence layer for campaigns. It is an
// outbound port in hexagonal architecture. Implementations must be
// concurrency-safe: every mutation of a single campaign is applied
// atomically and a failed write leaves no partial state behind.
//
// Lookups of absent records return a *domain.NotFoundError. Driver failures
// are returned as *domain.StoreError.
type CampaignRepository interface {
	// Create inserts a new campaign.
	Create(ctx context.Context, c domain.Campaign) error
	// Get returns a campaign by id.
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	// List returns campaigns matching filter, newest first.
	List(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, error)
	// Update loads the campaign, applies mutate and persists the result as
	// one atomic step. It returns the stored record.
	Update(ctx context.Context, id string, mutate MutateFunc) (*domain.Campaign, error)
	// UpdateByPaymentReference is Update keyed by PaymentTransactionID.
	UpdateByPaymentReference(ctx context.Context, reference string, mutate MutateFunc) (*domain.Campaign, error)
	// Delete removes the campaign.
	Delete(ctx context.Context, id string) error
	// IncrementCounter adds one to the counter using the store's atomic
	// increment, sets updated_at to at and returns the new value.
	IncrementCounter(ctx context.Context, id string, counter domain.Counter, at time.Time) (int64, error)
}
