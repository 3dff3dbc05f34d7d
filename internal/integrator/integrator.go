// Package integrator sums plane-of-array irradiance over a fixed
// daily time grid for a representative date, per §4.7. It is the
// only place that applies the urban-penalty and sky-view derating
// factors — temperature derating happens once, downstream in
// internal/biascorrection, never here (see the design note in §9 of
// the specification about double-counting).
package integrator

import (
	"math"
	"time"

	"github.com/chrissnell/solarengine/internal/irradiance"
	"github.com/chrissnell/solarengine/internal/solargeometry"
)

// StepMinutes and StepsPerDay define the 24h x 12 = 288 sample grid
// at 5-minute resolution.
const (
	StepMinutes = 5
	StepsPerDay = 24 * 60 / StepMinutes
)

// RepresentativeDate returns the summer solstice (June 21) of the
// given year, at UTC midnight, as pinned by §4.7 and §9.
func RepresentativeDate(year int) time.Time {
	return time.Date(year, time.June, 21, 0, 0, 0, 0, time.UTC)
}

// PanelGeometry returns the fixed tilt and surface azimuth used for
// the daily integration: beta = |lat|*0.76 deg, gamma = 180deg in the
// Northern hemisphere, 0deg in the Southern.
func PanelGeometry(lat float64) (tiltRad, surfaceAzimuthRad float64) {
	tiltDeg := math.Abs(lat) * 0.76
	tiltRad = tiltDeg * math.Pi / 180.0
	if lat >= 0 {
		surfaceAzimuthRad = math.Pi // 180 deg
	} else {
		surfaceAzimuthRad = 0
	}
	return tiltRad, surfaceAzimuthRad
}

// DailyRawPOA integrates POA over the representative date's 288-step
// grid at (lat, lng), applying the urban penalty (if enabled) and the
// sky-view factor. The result is an unnormalized daily sum in
// W·m⁻², never negative.
func DailyRawPOA(lat, lng float64, year int, urbanPenalty bool) float64 {
	date := RepresentativeDate(year)
	tiltRad, surfaceAzimuthRad := PanelGeometry(lat)

	var sum float64
	for step := 0; step < StepsPerDay; step++ {
		t := date.Add(time.Duration(step*StepMinutes) * time.Minute)
		pos := solargeometry.Position(lat, lng, t)
		if pos.IsNight() {
			continue
		}
		triple := irradiance.ClearSky(pos.ElevationRad)
		poa := irradiance.POA(triple, pos, tiltRad, surfaceAzimuthRad)
		sum += poa.Total
	}

	absLatFrac := math.Abs(lat) / 90.0
	if urbanPenalty {
		sum *= math.Max(0.7, 1-absLatFrac*0.3)
	}
	sum *= math.Max(0.8, 1-absLatFrac*0.2)

	return math.Max(0, sum)
}
