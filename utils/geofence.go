package utils

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DistanceMeters returns the great-circle distance between two lat/lng
// pairs. orb points are (lng, lat).
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	return geo.Distance(orb.Point{lng1, lat1}, orb.Point{lng2, lat2})
}

// WithinRadius reports whether a position is inside radiusMeters of a
// reference point.
func WithinRadius(refLat, refLng, lat, lng, radiusMeters float64) bool {
	return DistanceMeters(refLat, refLng, lat, lng) <= radiusMeters
}
