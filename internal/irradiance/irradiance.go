// Package irradiance implements the clear-sky DNI/DHI/GHI model and
// the plane-of-array decomposition from §4.6 of the analysis
// specification. It follows the structure of the teacher's
// pkg/solar/ineichen-perez.go (Kasten-Young air mass, exponential
// atmospheric transmittance) but is pinned to the single DNI
// definition the spec requires: beam-normal irradiance must never be
// multiplied by the panel incidence cosine, only POA-beam is.
package irradiance

import (
	"math"

	"github.com/chrissnell/solarengine/internal/solarmodel"
)

// Model constants, fixed by §4.6.
const (
	SolarConstant      = 1367.0 // W·m⁻², I_sc
	ClearSkyAttenuation = 0.75  // K
	DiffuseFraction     = 0.15  // f_d
	GroundAlbedo        = 0.2   // alpha
)

// ClearSky computes DNI/DHI/GHI for a solar elevation in radians. For
// e <= 0 all three are zero.
func ClearSky(elevationRad float64) solarmodel.IrradianceTriple {
	if elevationRad <= 0 {
		return solarmodel.IrradianceTriple{}
	}

	sinE := math.Sin(elevationRad)
	elevDeg := elevationRad * 180.0 / math.Pi

	// Kasten-Young air mass.
	m := 1.0 / (sinE + 0.50572*math.Pow(elevDeg+6.07995, -1.6364))
	tau := math.Pow(0.7, math.Pow(m, 0.678))

	dni := SolarConstant * tau * ClearSkyAttenuation
	dhi := dni * sinE * DiffuseFraction
	ghi := dni*sinE + dhi

	return solarmodel.IrradianceTriple{DNI: dni, DHI: dhi, GHI: ghi}
}

// POA decomposes the clear-sky triple onto a tilted panel (tilt beta,
// surface azimuth gamma, both in radians, same azimuth convention as
// solar azimuth) given the solar position.
func POA(triple solarmodel.IrradianceTriple, pos solarmodel.SolarPosition, tiltRad, surfaceAzimuthRad float64) solarmodel.POABreakdown {
	if pos.IsNight() {
		return solarmodel.POABreakdown{}
	}

	sinE := math.Sin(pos.ElevationRad)
	cosE := math.Cos(pos.ElevationRad)
	cosBeta := math.Cos(tiltRad)
	sinBeta := math.Sin(tiltRad)

	cosAOI := sinE*cosBeta + cosE*sinBeta*math.Cos(pos.AzimuthRad-surfaceAzimuthRad)

	beam := triple.DNI * math.Max(0, cosAOI)
	diffuse := triple.DHI * (1 + cosBeta) / 2
	ground := triple.GHI * GroundAlbedo * (1 - cosBeta) / 2

	return solarmodel.POABreakdown{
		Beam:    beam,
		Diffuse: diffuse,
		Ground:  ground,
		Total:   beam + diffuse + ground,
	}
}

// GHIConsistent reports whether the GHI self-check in §4.6 holds:
// |GHI - (DNI*sinE + DHI)| < 10 W/m^2.
func GHIConsistent(triple solarmodel.IrradianceTriple, elevationRad float64) bool {
	expected := triple.DNI*math.Sin(elevationRad) + triple.DHI
	return math.Abs(triple.GHI-expected) < 10
}
