// Package repotest holds the behavior every listing and user repository
// must share. Backend test packages run these against their own instances.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/rightnow/internal/domain"
)

// TestListingRepository exercises ordering, lookups and owner filtering.
func TestListingRepository(t *testing.T, newRepo func(t *testing.T) domain.ListingRepository) {
	t.Run("CreatePrepends", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, id := range []string{"a", "b", "c"} {
			if err := repo.Create(ctx, newListing(id, "owner1")); err != nil {
				t.Fatalf("Create %s: %v", id, err)
			}
		}

		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		assertIDs(t, list, "c", "b", "a")

		n, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != 3 {
			t.Fatalf("expected 3 listings, got %d", n)
		}
	})

	t.Run("GetByID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		lat, lng := 37.4419, -122.1430
		expires := time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC)
		in := newListing("x1", "owner1")
		in.Description = "Trek mountain bike"
		in.Lat, in.Lng = &lat, &lng
		in.ExpiresAt = &expires
		if err := repo.Create(ctx, in); err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := repo.GetByID(ctx, "x1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Title != in.Title || got.PriceCents != in.PriceCents || got.Description != in.Description {
			t.Fatalf("unexpected listing %+v", got)
		}
		if got.Lat == nil || *got.Lat != lat || got.Lng == nil || *got.Lng != lng {
			t.Fatalf("expected coordinates to round-trip, got %v %v", got.Lat, got.Lng)
		}
		if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
			t.Fatalf("expected expiry %v, got %v", expires, got.ExpiresAt)
		}
		if !got.CreatedAt.Equal(in.CreatedAt) {
			t.Fatalf("expected created at %v, got %v", in.CreatedAt, got.CreatedAt)
		}
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(context.Background(), "missing")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("OptionalFieldsStayNil", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		if err := repo.Create(ctx, newListing("bare", "owner1")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		got, err := repo.GetByID(ctx, "bare")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Lat != nil || got.Lng != nil || got.ExpiresAt != nil {
			t.Fatalf("expected nil optional fields, got %+v", got)
		}
	})

	t.Run("ListByOwner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, l := range []*domain.Listing{
			newListing("1", "user1"),
			newListing("2", "user2"),
			newListing("3", "user1"),
		} {
			if err := repo.Create(ctx, l); err != nil {
				t.Fatalf("Create %s: %v", l.ID, err)
			}
		}

		mine, err := repo.ListByOwner(ctx, "user1")
		if err != nil {
			t.Fatalf("ListByOwner: %v", err)
		}
		assertIDs(t, mine, "3", "1")

		none, err := repo.ListByOwner(ctx, "nobody")
		if err != nil {
			t.Fatalf("ListByOwner nobody: %v", err)
		}
		if len(none) != 0 {
			t.Fatalf("expected no listings, got %d", len(none))
		}
	})

	t.Run("DuplicateID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		if err := repo.Create(ctx, newListing("dup", "owner1")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := repo.Create(ctx, newListing("dup", "owner1")); err == nil {
			t.Fatal("expected an error for a duplicate id")
		}
	})
}

// TestUserRepository exercises user creation, lookups and updates.
func TestUserRepository(t *testing.T, newRepo func(t *testing.T) domain.UserRepository) {
	t.Run("CreateAndGet", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		age := 28
		user := &domain.User{
			ID:           "user1",
			Name:         "Alex Johnson",
			Email:        "alex@example.com",
			AvatarURL:    "https://example.com/a.png",
			LocationText: "Stanford, CA",
			Age:          &age,
			PasswordHash: "hash",
			CreatedAt:    time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
		}
		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("Create: %v", err)
		}

		byID, err := repo.GetByID(ctx, "user1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if byID.Name != user.Name || byID.LocationText != user.LocationText || byID.PasswordHash != "hash" {
			t.Fatalf("unexpected user %+v", byID)
		}
		if byID.Age == nil || *byID.Age != 28 {
			t.Fatalf("expected age 28, got %v", byID.Age)
		}

		byEmail, err := repo.GetByEmail(ctx, "alex@example.com")
		if err != nil {
			t.Fatalf("GetByEmail: %v", err)
		}
		if byEmail.ID != "user1" {
			t.Fatalf("expected user1, got %s", byEmail.ID)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound by id, got %v", err)
		}
		if _, err := repo.GetByEmail(ctx, "nope@example.com"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound by email, got %v", err)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		if err := repo.Create(ctx, &domain.User{ID: "u1", Name: "One", Email: "dup@example.com"}); err != nil {
			t.Fatalf("Create u1: %v", err)
		}
		err := repo.Create(ctx, &domain.User{ID: "u2", Name: "Two", Email: "dup@example.com"})
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		user := &domain.User{ID: "u1", Name: "One", Email: "one@example.com"}
		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("Create: %v", err)
		}

		age := 41
		user.Name = "Uno"
		user.Age = &age
		if err := repo.Update(ctx, user); err != nil {
			t.Fatalf("Update: %v", err)
		}

		got, err := repo.GetByID(ctx, "u1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Name != "Uno" || got.Age == nil || *got.Age != 41 {
			t.Fatalf("expected updated user, got %+v", got)
		}

		if err := repo.Update(ctx, &domain.User{ID: "ghost", Email: "g@example.com"}); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
		}
	})
}

func newListing(id, owner string) *domain.Listing {
	return &domain.Listing{
		ID:          id,
		Title:       "Listing " + id,
		PriceCents:  8500,
		ImageURL:    "https://example.com/" + id + ".jpg",
		CreatedAt:   time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC),
		OwnerUserID: owner,
	}
}

func assertIDs(t *testing.T, list []domain.Listing, want ...string) {
	t.Helper()
	if len(list) != len(want) {
		t.Fatalf("expected %d listings, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("position %d: expected id %s, got %s", i, id, list[i].ID)
		}
	}
}
