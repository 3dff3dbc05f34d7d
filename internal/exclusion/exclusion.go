// Package exclusion implements the point-in-polygon mask described in
// §4.4: candidates falling inside an excluded polygon (residential,
// water, sensitive, commercial per the caller's opts) are filtered
// out. The polygon data itself comes from an external provider this
// package only consumes through the Provider interface — the
// specification explicitly treats that fetcher as an external
// collaborator, not part of the CORE.
package exclusion

import (
	"context"
	"time"

	"github.com/chrissnell/solarengine/internal/solarmodel"
)

// PolygonType enumerates the zoning categories a polygon can carry.
type PolygonType string

const (
	TypeResidential PolygonType = "residential"
	TypeWater       PolygonType = "water"
	TypeSensitive   PolygonType = "sensitive"
	TypeCommercial  PolygonType = "commercial"
)

// Ring is a closed sequence of (lng, lat) vertices, GeoJSON-order.
type Ring [][2]float64

// Polygon is an outer ring plus zero or more holes, with an optional
// buffer distance applied by the provider (this package never
// buffers).
type Polygon struct {
	Type      PolygonType
	Outer     Ring
	Holes     []Ring
	BufferM   float64
}

// MultiPolygon is a set of constituent polygons treated as a single
// exclusion unit: a point inside any constituent is inside the whole.
type MultiPolygon []Polygon

// FetchOptions parametrizes a provider fetch.
type FetchOptions struct {
	IncludeWater     bool
	IncludeSensitive bool
}

// Provider is the external polygon fetcher contract (§4.4, §6). On
// failure, callers must treat it as a degrading, not fatal, failure
// and fail open (no exclusion).
type Provider interface {
	Fetch(ctx context.Context, center solarmodel.Coordinate, radiusKm float64, opts FetchOptions) ([]Polygon, error)
}

// DefaultTimeout is the independent timeout budget for polygon
// fetches, per §5.
const DefaultTimeout = 10 * time.Second

// NoopProvider returns no polygons and never errors; it is the
// default when a caller has not configured an external fetcher.
type NoopProvider struct{}

func (NoopProvider) Fetch(ctx context.Context, center solarmodel.Coordinate, radiusKm float64, opts FetchOptions) ([]Polygon, error) {
	return nil, nil
}

// Filter reports whether loc is excluded by any polygon in polys,
// applying the ray-casting rule: a point inside a hole is outside the
// polygon; a point inside any constituent of the set is excluded.
func Filter(loc solarmodel.Coordinate, polys []Polygon) bool {
	for _, p := range polys {
		if pointInPolygon(loc, p) {
			return true
		}
	}
	return false
}

func pointInPolygon(loc solarmodel.Coordinate, p Polygon) bool {
	if !rayCast(loc.Lng, loc.Lat, p.Outer) {
		return false
	}
	for _, hole := range p.Holes {
		if rayCast(loc.Lng, loc.Lat, hole) {
			return false
		}
	}
	return true
}

// rayCast implements the standard even-odd ray-casting point-in-ring
// test in the (lng, lat) plane.
func rayCast(x, y float64, ring Ring) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		intersects := (yi > y) != (yj > y)
		if intersects {
			xIntersect := (xj-xi)*(y-yi)/(yj-yi) + xi
			if x < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}
