// Package predictor implements the numeric biomass predictor over the
// spectral index calculator. The jitter terms are the one sanctioned source
// of non-determinism in the pipeline: repeated calls with identical input may
// legitimately differ, while the indices themselves never do.
package predictor

import (
	"context"
	"math"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"neeledger/domain/core"
	"neeledger/domain/fusion"
	"neeledger/domain/spectral"
	"neeledger/internal/errors"
	"neeledger/ports"
)

var _ ports.Predictor = (*BiomassPredictor)(nil)

const (
	baseBiomass = 1000.0
	ndviGain    = 500.0

	baseConfidence = 75.0
	confidenceGain = 20.0
	confidenceMin  = 70.0
	confidenceMax  = 95.0
)

// BiomassPredictor scores reflectance samples locally.
type BiomassPredictor struct {
	biomassJitter    distuv.Uniform
	confidenceJitter distuv.Uniform
}

// NewBiomassPredictor creates a predictor using the process-global random
// source, which is safe for concurrent requests.
func NewBiomassPredictor() *BiomassPredictor {
	return &BiomassPredictor{
		biomassJitter:    distuv.Uniform{Min: -100, Max: 100},
		confidenceJitter: distuv.Uniform{Min: -5, Max: 5},
	}
}

// NewSeededBiomassPredictor creates a predictor with a fixed jitter seed.
// The seeded source is not goroutine safe; use only in tests.
func NewSeededBiomassPredictor(seed uint64) *BiomassPredictor {
	src := rand.NewSource(seed)
	return &BiomassPredictor{
		biomassJitter:    distuv.Uniform{Min: -100, Max: 100, Src: src},
		confidenceJitter: distuv.Uniform{Min: -5, Max: 5, Src: src},
	}
}

// Predict computes vegetation indices and derives the jittered biomass
// estimate and clamped confidence. Fails with a validation error when a band
// is not a number; degenerate-but-finite inputs propagate per the index
// contract.
func (p *BiomassPredictor) Predict(_ context.Context, sample spectral.ReflectanceSample) (fusion.NumericPrediction, error) {
	for _, band := range []float64{sample.B2, sample.B3, sample.B4, sample.B8} {
		if math.IsNaN(band) {
			return fusion.NumericPrediction{}, errors.ValidationError("reflectance band is not a number")
		}
	}

	ix := spectral.Compute(sample)
	rounded := ix.Rounded()

	predicted := core.Round(baseBiomass + ix.NDVI*ndviGain + p.biomassJitter.Rand())
	confidence := core.Round(core.Clamp(baseConfidence+ix.NDVI*confidenceGain+p.confidenceJitter.Rand(), confidenceMin, confidenceMax))

	return fusion.NumericPrediction{
		Predicted:         predicted,
		Confidence:        confidence,
		NDVI:              rounded.NDVI,
		EVI:               rounded.EVI,
		SAVI:              rounded.SAVI,
		FeatureImportance: spectral.FeatureImportance(sample, ix),
	}, nil
}
