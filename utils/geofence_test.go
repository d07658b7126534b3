package utils

import (
	"math"
	"testing"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
		tolerance              float64
	}{
		{"same point", 17.385, 78.4867, 17.385, 78.4867, 0, 0.01},
		{"one degree of latitude", 0, 0, 1, 0, 110574, 1500},
		{"hyderabad to secunderabad", 17.385, 78.4867, 17.4399, 78.4983, 6200, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceMeters() = %.1f, expected %.1f ± %.1f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestWithinRadius(t *testing.T) {
	refLat, refLng := 17.385, 78.4867

	if !WithinRadius(refLat, refLng, refLat, refLng, 500) {
		t.Error("point should be within radius of itself")
	}
	// roughly 110 m north
	if !WithinRadius(refLat, refLng, refLat+0.001, refLng, 500) {
		t.Error("110 m offset should be inside a 500 m radius")
	}
	// roughly 1.1 km north
	if WithinRadius(refLat, refLng, refLat+0.01, refLng, 500) {
		t.Error("1.1 km offset should be outside a 500 m radius")
	}
}
