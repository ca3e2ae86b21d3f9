package domain_test

import (
	"testing"
	"time"

	"github.com/msomdec/rightnow/internal/domain"
)

func TestListing_Category(t *testing.T) {
	tests := []struct {
		price int64
		want  domain.Category
	}{
		{0, domain.CategoryFree},
		{1, domain.CategoryGeneral},
		{8500, domain.CategoryGeneral},
	}

	for _, tc := range tests {
		l := domain.Listing{PriceCents: tc.price}
		if got := l.Category(); got != tc.want {
			t.Fatalf("price %d: expected %s, got %s", tc.price, tc.want, got)
		}
	}
}

func TestListing_IsExpired(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	noExpiry := domain.Listing{}
	for _, at := range []time.Time{now, now.Add(100 * 365 * 24 * time.Hour), time.Time{}} {
		if noExpiry.IsExpired(at) {
			t.Fatalf("listing without expiry reported expired at %v", at)
		}
	}

	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)
	exact := now

	if !(&domain.Listing{ExpiresAt: &past}).IsExpired(now) {
		t.Fatal("expected past expiry to be expired")
	}
	if !(&domain.Listing{ExpiresAt: &exact}).IsExpired(now) {
		t.Fatal("expected expiry equal to now to be expired")
	}
	if (&domain.Listing{ExpiresAt: &future}).IsExpired(now) {
		t.Fatal("expected future expiry to be current")
	}
}

func TestProfilePatch_Apply(t *testing.T) {
	user := &domain.User{Name: "Alex", Email: "alex@example.com", LocationText: "Stanford, CA"}
	name := "Alexandra"
	age := 30

	domain.ProfilePatch{Name: &name, Age: &age}.Apply(user)

	if user.Name != "Alexandra" {
		t.Fatalf("expected name Alexandra, got %q", user.Name)
	}
	if user.Age == nil || *user.Age != 30 {
		t.Fatalf("expected age 30, got %v", user.Age)
	}
	if user.Email != "alex@example.com" || user.LocationText != "Stanford, CA" {
		t.Fatal("expected untouched fields to keep their values")
	}
}
