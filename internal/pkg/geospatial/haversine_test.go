package geospatial

import (
	"math"
	"testing"
)

func TestHaversineKm_SamePointIsZero(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{6.9271, 79.8612},
		{-33.8688, 151.2093},
		{90, 0},
		{-90, 180},
	}
	for _, p := range points {
		if d := HaversineKm(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("HaversineKm(%v,%v, same) = %v, want exactly 0", p[0], p[1], d)
		}
	}
}

func TestHaversineKm_Symmetric(t *testing.T) {
	a := [2]float64{6.9271, 79.8612}  // Colombo
	b := [2]float64{7.2906, 80.6337}  // Kandy

	ab := HaversineKm(a[0], a[1], b[0], b[1])
	ba := HaversineKm(b[0], b[1], a[0], a[1])

	if rel := math.Abs(ab-ba) / ab; rel > 1e-9 {
		t.Errorf("asymmetric: a->b=%v b->a=%v (rel diff %v)", ab, ba, rel)
	}
}

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm                 float64
		tolKm                  float64
	}{
		{"colombo-kandy", 6.9271, 79.8612, 7.2906, 80.6337, 94, 2},
		{"colombo-galle", 6.9271, 79.8612, 6.0535, 80.2210, 106, 3},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.1},
		{"antipodal", 0, 0, 0, 180, math.Pi * earthRadiusKm, 0.5},
	}

	for _, tt := range tests {
		got := HaversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
		if math.Abs(got-tt.wantKm) > tt.tolKm {
			t.Errorf("%s: got %.2f km, want %.2f±%.2f", tt.name, got, tt.wantKm, tt.tolKm)
		}
	}
}

func TestHaversineKm_MonotonicWithSeparation(t *testing.T) {
	// Moving the destination further along the same meridian must not
	// shrink the distance.
	prev := 0.0
	for lat := 1.0; lat <= 80; lat += 1.0 {
		d := HaversineKm(0, 0, lat, 0)
		if d <= prev {
			t.Fatalf("distance not increasing at lat=%v: %v <= %v", lat, d, prev)
		}
		prev = d
	}
}
