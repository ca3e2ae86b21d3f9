package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/rightnow/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DevUserID is the account DevLogin signs into.
	DevUserID = "user1"
	// DevEmail and DevPassword let the developer account log in through the form too.
	DevEmail    = "alex@example.com"
	DevPassword = "rightnow"
)

// Seed inserts the developer account and the sample listings. It is
// idempotent: the user is skipped when present and listings are only
// seeded into an empty store.
func (s *Store) Seed(ctx context.Context) error {
	if _, err := s.users.GetByID(ctx, DevUserID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("check developer user: %w", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(DevPassword), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash developer password: %w", err)
		}
		age := 28
		dev := &domain.User{
			ID:           DevUserID,
			Name:         "Alex Johnson",
			Email:        DevEmail,
			AvatarURL:    avatarURLs[0],
			LocationText: "Stanford, CA",
			Age:          &age,
			PasswordHash: string(hash),
			CreatedAt:    s.now(),
		}
		if err := s.users.Create(ctx, dev); err != nil {
			return fmt.Errorf("seed developer user: %w", err)
		}
		slog.Info("developer user seeded", "id", DevUserID)
	}

	n, err := s.listings.Count(ctx)
	if err != nil {
		return fmt.Errorf("count listings: %w", err)
	}
	if n > 0 {
		return nil
	}

	samples := SampleListings(s.now())
	// Create prepends, so insert back to front to keep the sample order.
	for i := len(samples) - 1; i >= 0; i-- {
		if err := s.listings.Create(ctx, &samples[i]); err != nil {
			return fmt.Errorf("seed listing %s: %w", samples[i].ID, err)
		}
	}
	slog.Info("sample listings seeded", "count", len(samples))
	return nil
}

// SampleListings returns the demo listings, with expiries one to six
// hours after now and creation times a few minutes before it.
func SampleListings(now time.Time) []domain.Listing {
	lat, lng := 37.4419, -122.1430
	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}
	loc := func() (*float64, *float64) {
		a, b := lat, lng
		return &a, &b
	}

	samples := []domain.Listing{
		{
			ID:          "1",
			Title:       "Vintage Leather Jacket",
			ImageURL:    "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=400&h=300&fit=crop",
			Description: "Beautiful brown leather jacket in excellent condition. Size M.",
			PriceCents:  8500,
			ExpiresAt:   at(2 * time.Hour),
			CreatedAt:   now.Add(-30 * time.Minute),
			OwnerUserID: "user1",
		},
		{
			ID:          "2",
			Title:       "Free Books - Computer Science",
			ImageURL:    "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=400&h=300&fit=crop",
			Description: "Collection of CS textbooks, free to good home. Includes algorithms, data structures, and programming books.",
			PriceCents:  0,
			ExpiresAt:   at(4 * time.Hour),
			CreatedAt:   now.Add(-15 * time.Minute),
			OwnerUserID: "user2",
		},
		{
			ID:          "3",
			Title:       "MacBook Pro 13-inch",
			ImageURL:    "https://images.unsplash.com/photo-1517336714731-489689fd1ca8?w=400&h=300&fit=crop",
			Description: "2019 MacBook Pro, 8GB RAM, 256GB SSD. Great condition, battery life excellent.",
			PriceCents:  120000,
			ExpiresAt:   at(6 * time.Hour),
			CreatedAt:   now.Add(-45 * time.Minute),
			OwnerUserID: "user1",
		},
		{
			ID:          "4",
			Title:       "Free Plant Pots",
			ImageURL:    "https://images.unsplash.com/photo-1416879595882-3373a0480b5b?w=400&h=300&fit=crop",
			Description: "Various ceramic and plastic plant pots. Perfect for gardening enthusiasts.",
			PriceCents:  0,
			ExpiresAt:   at(1 * time.Hour),
			CreatedAt:   now.Add(-20 * time.Minute),
			OwnerUserID: "user3",
		},
		{
			ID:          "5",
			Title:       "Bicycle - Mountain Bike",
			ImageURL:    "https://images.unsplash.com/photo-1558618047-3c8c76ca7d13?w=400&h=300&fit=crop",
			Description: "Trek mountain bike, 21-speed, recently tuned up. Great for trails and commuting.",
			PriceCents:  45000,
			ExpiresAt:   at(3 * time.Hour),
			CreatedAt:   now.Add(-10 * time.Minute),
			OwnerUserID: "user2",
		},
		{
			ID:          "6",
			Title:       "Free Kitchen Utensils",
			ImageURL:    "https://images.unsplash.com/photo-1556909114-f6e7ad7d3136?w=400&h=300&fit=crop",
			Description: "Assorted kitchen tools and utensils. Moving and need to clear out kitchen items.",
			PriceCents:  0,
			ExpiresAt:   at(5 * time.Hour),
			CreatedAt:   now.Add(-5 * time.Minute),
			OwnerUserID: "user1",
		},
	}
	for i := range samples {
		samples[i].Lat, samples[i].Lng = loc()
	}
	return samples
}
