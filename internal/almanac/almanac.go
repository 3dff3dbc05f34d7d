// Package almanac computes sunrise and sunset for a candidate point on
// a given day of year, as a supplemental field alongside the
// ranked results — useful for a human reviewing a candidate site, even
// though it plays no part in the POA integration or ranking itself.
// Adapted from the teacher's standalone sunrise calculator; the
// formula is independent of internal/solargeometry's hour-angle
// machinery, so the two can be tested and changed separately.
package almanac

import (
	"math"
	"time"
)

// SunTimes holds sunrise and sunset as minutes from UTC midnight.
// Both are -1 when the sun never rises or never sets (polar day or
// polar night) at that latitude on that day.
type SunTimes struct {
	SunriseUTCMinutes int
	SunsetUTCMinutes  int
}

// Compute returns sunrise/sunset for the given day-of-year at
// (latitude, longitude), in UTC minutes from midnight.
func Compute(dayOfYear int, latitude, longitude float64) SunTimes {
	doy := float64(dayOfYear)
	innerAngle := (356.6 + 0.9856*doy) * (math.Pi / 180.0)
	outerAngle := (278.97 + 0.9856*doy + 1.9165*math.Sin(innerAngle)) * (math.Pi / 180.0)
	declinationRad := math.Asin(0.39785 * math.Sin(outerAngle))

	latRad := latitude * (math.Pi / 180.0)

	// cos(H) = -tan(lat) * tan(declination) at sunrise/sunset.
	cosH := -math.Tan(latRad) * math.Tan(declinationRad)
	if cosH < -1.0 || cosH > 1.0 {
		return SunTimes{SunriseUTCMinutes: -1, SunsetUTCMinutes: -1}
	}

	hourAngleRad := math.Acos(cosH)
	hourAngleHours := hourAngleRad * (180.0 / math.Pi) / 15.0

	longitudeMinutes := longitude * 4.0
	refTime := time.Date(time.Now().Year(), 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, dayOfYear-1)
	eotMinutes := equationOfTimeMinutes(refTime)

	solarNoonUTC := 720.0 - longitudeMinutes - eotMinutes
	hourAngleMinutes := hourAngleHours * 60.0

	sunriseUTC := math.Mod(solarNoonUTC-hourAngleMinutes+1440, 1440)
	sunsetUTC := math.Mod(solarNoonUTC+hourAngleMinutes+1440, 1440)

	return SunTimes{
		SunriseUTCMinutes: int(math.Round(sunriseUTC)),
		SunsetUTCMinutes:  int(math.Round(sunsetUTC)),
	}
}

// FormatLocal converts UTC minutes from midnight into a "3:04 PM"
// string in loc, or "" for the polar-day/polar-night sentinel.
func FormatLocal(utcMinutes int, loc *time.Location) string {
	if utcMinutes < 0 {
		return ""
	}
	hours := utcMinutes / 60
	minutes := utcMinutes % 60
	t := time.Date(2000, 1, 1, hours, minutes, 0, 0, time.UTC)
	return t.In(loc).Format("3:04 PM")
}

// equationOfTimeMinutes is the same Meeus-derived approximation the
// teacher used for its standalone sunrise calculator; kept separate
// from internal/solargeometry's equation-of-time and not shared with
// it.
func equationOfTimeMinutes(t time.Time) float64 {
	jd := 2440587.5 + float64(t.Unix())/86400.0
	T := (jd - 2451545.0) / 36525.0

	fixAngle := func(angle float64) float64 { return math.Mod(angle+360, 360) }
	degToRad := func(d float64) float64 { return d * math.Pi / 180.0 }
	radToDeg := func(r float64) float64 { return r * 180.0 / math.Pi }

	l0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	m := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60

	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	return radToDeg(y*math.Sin(degToRad(2*l0))-
		2*e*math.Sin(degToRad(m))+
		4*e*y*math.Sin(degToRad(m))*math.Cos(degToRad(2*l0))-
		0.5*y*y*math.Sin(degToRad(4*l0))-
		1.25*e*e*math.Sin(degToRad(2*m))) * 4
}
