// Package sampler generates the candidate-point grid for a search
// disk, per §4.3: point count scales with disk area, and each point
// is drawn uniformly from the disk using the standard sqrt-radius
// transform so that the density doesn't pile up near the center.
package sampler

import (
	"math"

	"github.com/chrissnell/solarengine/internal/geomath"
	"github.com/chrissnell/solarengine/internal/seedrng"
	"github.com/chrissnell/solarengine/internal/solarmodel"
)

// MinPoints and MaxPoints bound the candidate count regardless of
// disk size.
const (
	MinPoints = 200
	MaxPoints = 2000
	density   = 30.0 // points per km^2 before clamping
)

// PointCount returns the number of candidates to draw for a disk of
// the given radius: round(radius_km^2 * density), clamped to
// [MinPoints, MaxPoints].
func PointCount(radiusKm float64) int {
	n := int(math.Round(radiusKm * radiusKm * density))
	if n < MinPoints {
		return MinPoints
	}
	if n > MaxPoints {
		return MaxPoints
	}
	return n
}

// Generate draws PointCount(radiusKm) points uniformly distributed
// over the disk centered at center, using rng as the single
// deterministic stream. Each point's (r, theta) pair is consumed in
// order so that re-running with an equally-seeded rng reproduces the
// identical grid.
func Generate(center solarmodel.Coordinate, radiusKm float64, rng *seedrng.Rng) []solarmodel.Coordinate {
	n := PointCount(radiusKm)
	points := make([]solarmodel.Coordinate, n)
	for i := 0; i < n; i++ {
		u := rng.Float64()
		v := rng.Float64()
		r := radiusKm * math.Sqrt(u)
		theta := 2 * math.Pi * v

		xKm := r * math.Cos(theta)
		yKm := r * math.Sin(theta)
		lat, lng := geomath.InverseLocalProjection(center.Lat, center.Lng, xKm, yKm)
		points[i] = solarmodel.Coordinate{Lat: lat, Lng: lng}
	}
	return points
}
