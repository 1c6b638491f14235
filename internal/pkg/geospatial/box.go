package geospatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Manhattan returns |Δlat| + |Δlon| in degrees. No latitude correction is
// applied; callers rank neighbours with it, they do not measure with it.
func Manhattan(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Abs(lat1-lat2) + math.Abs(lon1-lon2)
}

// WithinBox reports whether the second point lies strictly inside the square
// of half-side threshold degrees centred on the first.
func WithinBox(lat1, lon1, lat2, lon2, threshold float64) bool {
	return math.Abs(lat1-lat2) < threshold && math.Abs(lon1-lon2) < threshold
}

// BoundingBox returns the degree-space square around a point.
func BoundingBox(lat, lon, threshold float64) (minLat, minLon, maxLat, maxLon float64) {
	return lat - threshold, lon - threshold, lat + threshold, lon + threshold
}

// ValidThreshold reports whether t is usable as a box half-side.
func ValidThreshold(t float64) bool {
	return t > 0 && !math.IsInf(t, 0) && !math.IsNaN(t)
}

// Valid reports whether lat/lon is a real WGS 84 coordinate.
func Valid(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}
