package route

import (
	"github.com/golang/geo/s2"

	"ais-route/internal/ais"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometres between two
// points given in degrees, on a sphere of radiusKm. s2.LatLng.Distance is
// the haversine formula with the 1-a term clamped at zero, so identical
// points give exactly 0 and never NaN.
func Haversine(lat1, lon1, lat2, lon2, radiusKm float64) float64 {
	// Fixed endpoint order keeps the result bit-for-bit symmetric.
	if lat2 < lat1 || (lat2 == lat1 && lon2 < lon1) {
		lat1, lon1, lat2, lon2 = lat2, lon2, lat1, lon1
	}
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * radiusKm
}

// SegmentDistance is the haversine distance between a segment's endpoints.
func SegmentDistance(s ais.Segment, radiusKm float64) float64 {
	return Haversine(s.Prev.Latitude, s.Prev.Longitude, s.Curr.Latitude, s.Curr.Longitude, radiusKm)
}
