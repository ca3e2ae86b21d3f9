package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/msomdec/rightnow/internal/domain"
)

// ListingRepository keeps listings newest first.
type ListingRepository struct {
	mu       sync.RWMutex
	listings []domain.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	if listing.ID == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.listings {
		if l.ID == listing.ID {
			return fmt.Errorf("%w: duplicate listing id %s", domain.ErrInvalidInput, listing.ID)
		}
	}

	r.listings = append([]domain.Listing{cloneListing(*listing)}, r.listings...)
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.listings {
		if l.ID == id {
			found := cloneListing(l)
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		out = append(out, cloneListing(l))
	}
	return out, nil
}

func (r *ListingRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Listing{}
	for _, l := range r.listings {
		if l.OwnerUserID == userID {
			out = append(out, cloneListing(l))
		}
	}
	return out, nil
}

func (r *ListingRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listings), nil
}

// cloneListing copies the pointer fields so callers cannot mutate stored state.
func cloneListing(l domain.Listing) domain.Listing {
	if l.Lat != nil {
		v := *l.Lat
		l.Lat = &v
	}
	if l.Lng != nil {
		v := *l.Lng
		l.Lng = &v
	}
	if l.ExpiresAt != nil {
		v := *l.ExpiresAt
		l.ExpiresAt = &v
	}
	return l
}
