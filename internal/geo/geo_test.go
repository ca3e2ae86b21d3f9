package geo_test

import (
	"math"
	"testing"

	"github.com/msomdec/rightnow/internal/geo"
)

func TestDistanceMiles_SamePoint(t *testing.T) {
	d := geo.DistanceMiles(37.4419, -122.1430, 37.4419, -122.1430)
	if d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
	if got := geo.FormatMiles(d); got != "< 0.1 mi" {
		t.Fatalf("expected \"< 0.1 mi\", got %q", got)
	}
}

func TestDistanceMiles_KnownPair(t *testing.T) {
	// Stanford to downtown San Francisco is roughly 29 miles.
	d := geo.DistanceMiles(37.4419, -122.1430, 37.7749, -122.4194)
	if d < 27 || d > 31 {
		t.Fatalf("expected ~29 miles, got %v", d)
	}

	// One degree of latitude along a meridian.
	oneDeg := geo.DistanceMiles(0, 0, 1, 0)
	want := geo.EarthRadiusMiles * math.Pi / 180
	if math.Abs(oneDeg-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, oneDeg)
	}
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	a := geo.DistanceMiles(40.7128, -74.0060, 51.5074, -0.1278)
	b := geo.DistanceMiles(51.5074, -0.1278, 40.7128, -74.0060)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("expected symmetric distances, got %v and %v", a, b)
	}
}

func TestFormatMiles(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "< 0.1 mi"},
		{0.05, "< 0.1 mi"},
		{0.1, "0.1 mi"},
		{0.44, "0.4 mi"},
		{0.96, "1.0 mi"},
		{1, "1 mi"},
		{1.4, "1 mi"},
		{2.5, "3 mi"},
		{29.2, "29 mi"},
	}

	for _, tc := range tests {
		if got := geo.FormatMiles(tc.in); got != tc.want {
			t.Fatalf("FormatMiles(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestLabel(t *testing.T) {
	lat, lng := 37.4419, -122.1430
	ref := geo.DefaultLocation

	if got := geo.Label(nil, &lng, &ref); got != geo.Placeholder {
		t.Fatalf("expected placeholder for missing lat, got %q", got)
	}
	if got := geo.Label(&lat, &lng, nil); got != geo.Placeholder {
		t.Fatalf("expected placeholder for missing reference, got %q", got)
	}
	if got := geo.Label(&lat, &lng, &ref); got != "< 0.1 mi" {
		t.Fatalf("expected \"< 0.1 mi\", got %q", got)
	}
}
