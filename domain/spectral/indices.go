// Package spectral computes vegetation indices from Sentinel-2 reflectance
// bands. Everything here is a pure function of its inputs: the same
// ReflectanceSample always yields bit-identical indices. Degenerate inputs
// (zero denominators) propagate as NaN/Inf rather than erroring, matching the
// behavior of the upstream biomass model service.
package spectral

import (
	"math"

	"neeledger/domain/core"
)

// ReflectanceSample holds the four reflectance bands used by the biomass
// model plus a free-text species label. Values are unitless and unrestricted.
type ReflectanceSample struct {
	B2      float64 `json:"B2"` // blue
	B3      float64 `json:"B3"` // green
	B4      float64 `json:"B4"` // red
	B8      float64 `json:"B8"` // near-infrared
	Species string  `json:"species"`
}

// Indices holds the derived vegetation indices, unrounded. Display rounding
// to 3 decimals happens at serialization; the raw values feed downstream
// weighting.
type Indices struct {
	NDVI float64
	EVI  float64
	SAVI float64
}

// Feature-importance scale factors. These are fixed constants of the scoring
// design, not model outputs.
const (
	ndviScale = 100
	eviScale  = 80
	saviScale = 60

	b2Scale = 1000
	b3Scale = 800
	b4Scale = 900
	b8Scale = 400
)

// Compute derives the vegetation indices from a sample.
func Compute(s ReflectanceSample) Indices {
	return Indices{
		NDVI: (s.B8 - s.B4) / (s.B8 + s.B4),
		EVI:  2.5 * (s.B8 - s.B4) / (s.B8 + 6*s.B4 - 7.5*s.B2 + 1),
		SAVI: 1.5 * (s.B8 - s.B4) / (s.B8 + s.B4 + 0.5),
	}
}

// Rounded returns the display form of the indices (3 decimal places).
func (ix Indices) Rounded() Indices {
	return Indices{
		NDVI: core.RoundTo(ix.NDVI, 3),
		EVI:  core.RoundTo(ix.EVI, 3),
		SAVI: core.RoundTo(ix.SAVI, 3),
	}
}

// FeatureImportance builds the per-feature importance map for a sample and
// its indices. Index importances use the magnitude of the unrounded index;
// band importances use the raw band value (no absolute value, matching the
// original model service).
func FeatureImportance(s ReflectanceSample, ix Indices) map[string]float64 {
	return map[string]float64{
		"NDVI": core.Round(math.Abs(ix.NDVI) * ndviScale),
		"EVI":  core.Round(math.Abs(ix.EVI) * eviScale),
		"SAVI": core.Round(math.Abs(ix.SAVI) * saviScale),
		"B2":   core.Round(s.B2 * b2Scale),
		"B3":   core.Round(s.B3 * b3Scale),
		"B4":   core.Round(s.B4 * b4Scale),
		"B8":   core.Round(s.B8 * b8Scale),
	}
}
