// Package geo computes great-circle distances between listings and a
// reference point and formats them for display.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMiles is the mean earth radius used by the Haversine formula.
const EarthRadiusMiles = 3959.0

// Placeholder is shown when a distance cannot be computed.
const Placeholder = "—"

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DefaultLocation is the reference point used when a client does not
// report its own position (Stanford, CA).
var DefaultLocation = Point{Lat: 37.4419, Lng: -122.1430}

// DistanceMiles returns the Haversine distance between two coordinates.
// Inputs are degrees and are not range checked.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// FormatMiles renders a distance: "< 0.1 mi", one decimal below a mile,
// whole miles otherwise.
func FormatMiles(d float64) string {
	switch {
	case d < 0.1:
		return "< 0.1 mi"
	case d < 1:
		return fmt.Sprintf("%.1f mi", d)
	default:
		return fmt.Sprintf("%d mi", int64(math.Round(d)))
	}
}

// Label formats the distance from ref to a listing's coordinates, or
// returns Placeholder when either side has no position.
func Label(lat, lng *float64, ref *Point) string {
	if lat == nil || lng == nil || ref == nil {
		return Placeholder
	}
	return FormatMiles(DistanceMiles(ref.Lat, ref.Lng, *lat, *lng))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
