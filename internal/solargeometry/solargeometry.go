// Package solargeometry computes first-principles solar position
// (declination, equation of time, elevation, azimuth, solar noon)
// from a location and a time, following the formulas in §4.5 of the
// analysis specification. It keeps the same shape as the teacher's
// util/solar package (day-of-year → declination → hour angle →
// elevation/azimuth) but fixes a single azimuth convention (0° =
// north, clockwise) project-wide, and uses soniakeys/meeus for the
// Julian Day that anchors day-of-year so leap years and UTC offsets
// are handled the way the rest of the ecosystem expects.
package solargeometry

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/unit"

	"github.com/chrissnell/solarengine/internal/solarmodel"
)

func degToRad(d float64) float64 { return d * math.Pi / 180.0 }

// DayOfYear returns N in [1, 366] for the UTC calendar date of t,
// per §4.5: floor of (date - Jan 0 of the same year) / 86400s.
func DayOfYear(t time.Time) int {
	t = t.UTC()
	jan0 := time.Date(t.Year()-1, 12, 31, 0, 0, 0, 0, time.UTC)
	jdNow := julian.TimeToJD(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	jdJan0 := julian.TimeToJD(jan0)
	return int(math.Floor(jdNow - jdJan0))
}

// DeclinationRad returns the solar declination δ for day-of-year N,
// in radians: δ_deg = 23.45·sin((360/365)·(284+N)).
func DeclinationRad(dayOfYear int) float64 {
	deg := 23.45 * math.Sin(degToRad((360.0/365.0)*(284+float64(dayOfYear))))
	return unit.AngleFromDeg(deg).Rad()
}

// EquationOfTimeMinutes returns EoT in minutes for day-of-year N:
// B = (360/365)(N-81); EoT = 9.87 sin(2B) - 7.53 cos(B) - 1.5 sin(B).
func EquationOfTimeMinutes(dayOfYear int) float64 {
	b := degToRad((360.0 / 365.0) * (float64(dayOfYear) - 81))
	return 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)
}

// LocalApparentSolarTimeHours returns LAST in decimal hours at
// longitude lngDeg for a given UTC hour-of-day and day-of-year.
func LocalApparentSolarTimeHours(utcHour float64, lngDeg float64, dayOfYear int) float64 {
	eot := EquationOfTimeMinutes(dayOfYear)
	return utcHour + lngDeg/15.0 + eot/60.0
}

// HourAngleRad returns the hour angle H = (LAST-12)*15deg, in
// radians.
func HourAngleRad(lastHours float64) float64 {
	return unit.AngleFromDeg((lastHours - 12) * 15).Rad()
}

// Position computes the solar elevation and azimuth for a location
// at UTC instant t, using the day-of-year of t.
func Position(lat, lng float64, t time.Time) solarmodel.SolarPosition {
	n := DayOfYear(t)
	delta := DeclinationRad(n)
	utcHour := float64(t.UTC().Hour()) + float64(t.UTC().Minute())/60.0 + float64(t.UTC().Second())/3600.0
	last := LocalApparentSolarTimeHours(utcHour, lng, n)
	h := HourAngleRad(last)

	phi := degToRad(lat)

	sinElev := math.Sin(delta)*math.Sin(phi) + math.Cos(delta)*math.Cos(phi)*math.Cos(h)
	sinElev = math.Min(1, math.Max(-1, sinElev))
	elev := math.Asin(sinElev)

	// The atan2 term is measured from south (positive toward west);
	// adding pi re-references it to 0 = north, clockwise.
	az := math.Atan2(math.Sin(h), math.Cos(h)*math.Sin(phi)-math.Tan(delta)*math.Cos(phi)) + math.Pi
	az = wrapAzimuth(az)

	return solarmodel.SolarPosition{ElevationRad: elev, AzimuthRad: az}
}

// wrapAzimuth normalizes an azimuth in radians into (-pi, pi], so
// azimuth continuity holds across the 0°/360° seam.
func wrapAzimuth(a float64) float64 {
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// SolarNoonUTC returns the UTC time of solar noon at longitude lngDeg
// on the calendar date of dateUTC (time-of-day of dateUTC is ignored):
// UTC hour = 12 - L/15 - EoT/60.
func SolarNoonUTC(lngDeg float64, dateUTC time.Time) time.Time {
	dateUTC = dateUTC.UTC()
	midnight := time.Date(dateUTC.Year(), dateUTC.Month(), dateUTC.Day(), 0, 0, 0, 0, time.UTC)
	n := DayOfYear(midnight)
	eot := EquationOfTimeMinutes(n)
	noonHour := 12 - lngDeg/15.0 - eot/60.0
	seconds := noonHour * 3600
	return midnight.Add(time.Duration(seconds * float64(time.Second)))
}
