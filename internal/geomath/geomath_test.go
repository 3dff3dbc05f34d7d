package geomath

import "testing"

func TestHaversineZeroAtSamePoint(t *testing.T) {
	d := HaversineKm(30.2672, -97.7431, 30.2672, -97.7431)
	if d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := HaversineKm(30.2672, -97.7431, 30.30, -97.70)
	b := HaversineKm(30.30, -97.70, 30.2672, -97.7431)
	if a != b {
		t.Fatalf("expected symmetric distances, got %v vs %v", a, b)
	}
}

func TestHaversineNonNegative(t *testing.T) {
	d := HaversineKm(10, 10, -10, -10)
	if d < 0 {
		t.Fatalf("expected non-negative distance, got %v", d)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Austin, TX to Dallas, TX is roughly 300 km.
	d := HaversineKm(30.2672, -97.7431, 32.7767, -96.7970)
	if d < 280 || d > 320 {
		t.Fatalf("expected ~300km, got %v", d)
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	anchorLat, anchorLng := 30.2672, -97.7431
	lat, lng := 30.30, -97.70
	x, y := LocalProjection(anchorLat, anchorLng, lat, lng)
	gotLat, gotLng := InverseLocalProjection(anchorLat, anchorLng, x, y)
	if diff := gotLat - lat; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("lat round-trip mismatch: %v vs %v", gotLat, lat)
	}
	if diff := gotLng - lng; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("lng round-trip mismatch: %v vs %v", gotLng, lng)
	}
}
