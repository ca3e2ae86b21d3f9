package domain

import (
	"context"
	"time"
)

// Category is derived from the price: zero-priced listings are free.
type Category string

const (
	CategoryGeneral Category = "general"
	CategoryFree    Category = "free"
)

// Listing is a general or free item post with an optional location and expiry.
type Listing struct {
	ID          string
	Title       string
	PriceCents  int64
	ImageURL    string
	Description string
	Lat         *float64
	Lng         *float64
	ExpiresAt   *time.Time // nil means the listing never expires
	CreatedAt   time.Time
	OwnerUserID string
}

// Category classifies the listing by price.
func (l *Listing) Category() Category {
	if l.PriceCents == 0 {
		return CategoryFree
	}
	return CategoryGeneral
}

// IsExpired reports whether the listing's expiry is at or before now.
// Listings without an expiry never expire.
func (l *Listing) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// HasLocation reports whether both coordinates are set.
func (l *Listing) HasLocation() bool {
	return l.Lat != nil && l.Lng != nil
}

// NewListing is the payload accepted when posting a listing. The id,
// creation time and owner are assigned by the store.
type NewListing struct {
	Title       string     `json:"title"`
	PriceCents  int64      `json:"priceCents"`
	ImageURL    string     `json:"imageUrl"`
	Description string     `json:"description"`
	Lat         *float64   `json:"lat"`
	Lng         *float64   `json:"lng"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

// ListingRepository stores listings in insertion order, newest first.
type ListingRepository interface {
	// Create prepends the listing. The caller assigns ID and CreatedAt.
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id string) (*Listing, error)
	// List returns every listing in store order (most recently created first).
	List(ctx context.Context) ([]Listing, error)
	ListByOwner(ctx context.Context, userID string) ([]Listing, error)
	Count(ctx context.Context) (int, error)
}
