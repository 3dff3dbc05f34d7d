package sampler

import (
	"math"
	"testing"

	"github.com/chrissnell/solarengine/internal/geomath"
	"github.com/chrissnell/solarengine/internal/seedrng"
	"github.com/chrissnell/solarengine/internal/solarmodel"
)

func TestPointCountClampedToBounds(t *testing.T) {
	if n := PointCount(0.1); n != MinPoints {
		t.Fatalf("expected MinPoints for tiny radius, got %d", n)
	}
	if n := PointCount(100); n != MaxPoints {
		t.Fatalf("expected MaxPoints for huge radius, got %d", n)
	}
	mid := PointCount(5)
	if mid < MinPoints || mid > MaxPoints {
		t.Fatalf("expected mid-range point count within bounds, got %d", mid)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	center := solarmodel.Coordinate{Lat: 30.2672, Lng: -97.7431}
	a := Generate(center, 5, seedrng.New(center.Lat, center.Lng, 5, 7))
	b := Generate(center, 5, seedrng.New(center.Lat, center.Lng, 5, 7))
	if len(a) != len(b) {
		t.Fatalf("expected equal-length outputs, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between identically seeded runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateStaysWithinRadius(t *testing.T) {
	center := solarmodel.Coordinate{Lat: 30.2672, Lng: -97.7431}
	radiusKm := 3.0
	pts := Generate(center, radiusKm, seedrng.New(center.Lat, center.Lng, radiusKm, 1))
	for _, p := range pts {
		d := geomath.HaversineKm(center.Lat, center.Lng, p.Lat, p.Lng)
		if d > radiusKm*1.01 { // small slack for the flat-earth projection
			t.Fatalf("point %v is %v km from center, outside radius %v", p, d, radiusKm)
		}
	}
}

// TestGenerateMeanRadialDistance checks property 2: for a
// disk-uniform distribution, E[r] = (2/3)*R. With enough points the
// sample mean should land within a generous tolerance of that value.
func TestGenerateMeanRadialDistance(t *testing.T) {
	center := solarmodel.Coordinate{Lat: 0, Lng: 0}
	radiusKm := 10.0
	pts := Generate(center, radiusKm, seedrng.New(center.Lat, center.Lng, radiusKm, 42))

	var sum float64
	for _, p := range pts {
		sum += geomath.HaversineKm(center.Lat, center.Lng, p.Lat, p.Lng)
	}
	mean := sum / float64(len(pts))
	want := (2.0 / 3.0) * radiusKm
	if math.Abs(mean-want) > want*0.05 {
		t.Fatalf("expected mean radial distance near %v, got %v", want, mean)
	}
}

func TestGenerateAngularBalance(t *testing.T) {
	center := solarmodel.Coordinate{Lat: 0, Lng: 0}
	radiusKm := 10.0
	pts := Generate(center, radiusKm, seedrng.New(center.Lat, center.Lng, radiusKm, 99))

	var bins [4]int
	for _, p := range pts {
		xKm, yKm := geomath.LocalProjection(center.Lat, center.Lng, p.Lat, p.Lng)
		theta := math.Atan2(yKm, xKm)
		if theta < 0 {
			theta += 2 * math.Pi
		}
		bins[int(theta/(math.Pi/2))%4]++
	}

	n := len(pts)
	for i, c := range bins {
		frac := float64(c) / float64(n)
		if frac < 0.15 || frac > 0.35 {
			t.Fatalf("quadrant %d holds %v of points, expected roughly uniform quarter shares", i, frac)
		}
	}
}
