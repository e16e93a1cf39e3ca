package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/core/port"
	"ad-campaigns/internal/core/port/mocks"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func sampleCampaign(id string) domain.Campaign {
	return domain.Campaign{
		ID:            id,
		AdvertiserID:  "adv-1",
		AdType:        domain.AdTypeBanner,
		AdContent:     "https://cdn.example.com/banner.png",
		ContentKind:   domain.ContentKindURL,
		AdPlacement:   domain.PlacementHomepage,
		Title:         "Spring sale",
		StartDate:     fixedNow.Add(-72 * time.Hour),
		EndDate:       fixedNow.Add(72 * time.Hour),
		Budget:        dec("1000"),
		Spend:         dec("250"),
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     fixedNow.Add(-96 * time.Hour),
		UpdatedAt:     fixedNow.Add(-96 * time.Hour),
	}
}

// fakeStore backs a mock repository with a map so that read-modify-write
// flows can be exercised end to end.
type fakeStore struct {
	mu   sync.Mutex
	byID map[string]domain.Campaign
}

func newFakeRepo(t *testing.T, campaigns ...domain.Campaign) (*mocks.MockCampaignRepository, *fakeStore) {
	s := &fakeStore{byID: make(map[string]domain.Campaign)}
	for _, c := range campaigns {
		s.byID[c.ID] = c
	}

	repo := mocks.NewMockCampaignRepository(t)
	repo.EXPECT().Get(mock.Anything, mock.Anything).RunAndReturn(s.get).Maybe()
	repo.EXPECT().Update(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, id string, mutate port.MutateFunc) (*domain.Campaign, error) {
			return s.update(id, func(c domain.Campaign) bool { return c.ID == id }, mutate)
		}).Maybe()
	repo.EXPECT().UpdateByPaymentReference(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, ref string, mutate port.MutateFunc) (*domain.Campaign, error) {
			return s.update(ref, func(c domain.Campaign) bool { return c.PaymentTransactionID == ref }, mutate)
		}).Maybe()
	return repo, s
}

func (s *fakeStore) get(_ context.Context, id string) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, domain.NewNotFound(id)
	}
	return &c, nil
}

func (s *fakeStore) snapshot(id string) domain.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id]
}

func (s *fakeStore) update(key string, match func(domain.Campaign) bool, mutate port.MutateFunc) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.byID {
		if !match(c) {
			continue
		}
		changed, err := mutate(&c)
		if err != nil {
			return nil, err
		}
		if changed {
			s.byID[id] = c
		}
		out := s.byID[id]
		return &out, nil
	}
	return nil, domain.NewNotFound(key)
}
