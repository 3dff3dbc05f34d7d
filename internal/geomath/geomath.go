// Package geomath provides the spherical-earth distance and local
// projection primitives used for candidate sampling and spacing. It
// is deliberately separate from internal/solargeometry: the
// projection here is a flat local approximation suitable for
// kilometer-scale sampling, never for astronomy.
package geomath

import "math"

// EarthRadiusKm is the mean Earth radius used for the haversine
// formula, matching the value pinned by the spec.
const EarthRadiusKm = 6371.0

func degToRad(d float64) float64 { return d * math.Pi / 180.0 }

// HaversineKm returns the great-circle distance between two WGS-84
// points, in kilometers. The result is symmetric and non-negative,
// and zero for identical points; inputs are not rounded, so points
// that differ only past the fourth decimal still give a small
// positive distance.
func HaversineKm(aLat, aLng, bLat, bLng float64) float64 {
	lat1, lat2 := degToRad(aLat), degToRad(bLat)
	dLat := degToRad(bLat - aLat)
	dLng := degToRad(bLng - aLng)

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// LocalProjection converts a (lat, lng) offset from an anchor into
// local east/north kilometers using an equirectangular approximation
// around the anchor's latitude. Valid only for small radii (tens of
// km); never use this for solar-geometry angles.
func LocalProjection(anchorLat, anchorLng, lat, lng float64) (xKm, yKm float64) {
	const kmPerDegLat = 111.0
	xKm = (lng - anchorLng) * kmPerDegLat * math.Cos(degToRad(anchorLat))
	yKm = (lat - anchorLat) * kmPerDegLat
	return xKm, yKm
}

// InverseLocalProjection is the inverse of LocalProjection: given an
// anchor and an (x, y) offset in kilometers, returns the (lat, lng)
// of the offset point.
func InverseLocalProjection(anchorLat, anchorLng, xKm, yKm float64) (lat, lng float64) {
	const kmPerDegLat = 111.0
	lat = anchorLat + yKm/kmPerDegLat
	lng = anchorLng + xKm/(kmPerDegLat*math.Cos(degToRad(anchorLat)))
	return lat, lng
}
