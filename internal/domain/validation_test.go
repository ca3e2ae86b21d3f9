package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/msomdec/rightnow/internal/domain"
)

func TestValidateNewListing(t *testing.T) {
	lat, lng := 37.44, -122.14
	badLat := 91.0

	tests := []struct {
		name    string
		in      domain.NewListing
		wantErr bool
		field   string
	}{
		{"valid", domain.NewListing{Title: "Lamp", PriceCents: 100, ImageURL: "u"}, false, ""},
		{"valid free with location", domain.NewListing{Title: "Lamp", ImageURL: "u", Lat: &lat, Lng: &lng}, false, ""},
		{"missing title", domain.NewListing{Title: "  ", PriceCents: 100, ImageURL: "u"}, true, "title"},
		{"negative price", domain.NewListing{Title: "Lamp", PriceCents: -1, ImageURL: "u"}, true, "priceCents"},
		{"missing image", domain.NewListing{Title: "Lamp"}, true, "imageUrl"},
		{"half location", domain.NewListing{Title: "Lamp", ImageURL: "u", Lat: &lat}, true, "location"},
		{"latitude out of range", domain.NewListing{Title: "Lamp", ImageURL: "u", Lat: &badLat, Lng: &lng}, true, "lat"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := domain.ValidateNewListing(tc.in)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var verrs domain.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			if _, ok := verrs[tc.field]; !ok {
				t.Fatalf("expected error on field %q, got %v", tc.field, verrs)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   domain.Credentials
		wantErr bool
	}{
		{"valid", domain.Credentials{Email: "alex@example.com", Password: "secret1"}, false},
		{"empty email", domain.Credentials{Password: "secret1"}, true},
		{"malformed email", domain.Credentials{Email: "alex", Password: "secret1"}, true},
		{"short password", domain.Credentials{Email: "alex@example.com", Password: "abc"}, true},
		{"empty password", domain.Credentials{Email: "alex@example.com"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := domain.ValidateCredentials(tc.creds)
			if tc.wantErr && !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateProfilePatch(t *testing.T) {
	short := "A"
	badAge := 200
	okName := "Al"

	if err := domain.ValidateProfilePatch(domain.ProfilePatch{}); err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	if err := domain.ValidateProfilePatch(domain.ProfilePatch{Name: &okName}); err != nil {
		t.Fatalf("valid name: %v", err)
	}
	if err := domain.ValidateProfilePatch(domain.ProfilePatch{Name: &short}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short name, got %v", err)
	}
	if err := domain.ValidateProfilePatch(domain.ProfilePatch{Age: &badAge}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for age, got %v", err)
	}
}

func TestValidate_CountsRunesNotBytes(t *testing.T) {
	accented := "É"
	if err := domain.ValidateProfilePatch(domain.ProfilePatch{Name: &accented}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected single accented letter to fail the name minimum, got %v", err)
	}
	err := domain.ValidateSignup(domain.Signup{Name: "É", Email: "e@example.com", Password: "secret1"})
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if _, ok := verrs["name"]; !ok {
		t.Fatalf("expected name error, got %v", verrs)
	}

	accentedPair := "Éa"
	if err := domain.ValidateProfilePatch(domain.ProfilePatch{Name: &accentedPair}); err != nil {
		t.Fatalf("expected two-letter name to pass, got %v", err)
	}

	wide := domain.NewListing{Title: strings.Repeat("日", 60), ImageURL: "u"}
	if err := domain.ValidateNewListing(wide); err != nil {
		t.Fatalf("expected 60-character CJK title to pass, got %v", err)
	}
	wide.Title = strings.Repeat("日", 121)
	if err := domain.ValidateNewListing(wide); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected 121-character title to fail, got %v", err)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := domain.ValidationErrors{"title": "Title is required", "imageUrl": "Image is required"}
	want := "invalid input: imageUrl: Image is required; title: Title is required"
	if errs.Error() != want {
		t.Fatalf("expected %q, got %q", want, errs.Error())
	}
}
