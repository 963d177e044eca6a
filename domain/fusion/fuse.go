// Package fusion combines the numeric biomass prediction with the optional
// language-model assessment into a single fused result. Fuse is total: a
// missing qualitative input is the normal degraded path, never an error.
package fusion

import (
	"neeledger/domain/core"
)

// Fixed fusion weights. The trained numeric model carries more weight than
// the language-model assessment. These are the single source of truth for
// the 60/40 split; do not duplicate the values elsewhere.
const (
	XAIWeight    = 0.6
	GeminiWeight = 0.4
)

// Synthetic feature-importance entries added when fusion occurs.
const (
	featureAIAnalysis     = "AI Analysis"
	featureRiskAssessment = "Risk Assessment"
)

// Fuse combines a numeric prediction with an optional qualitative
// assessment. With qual == nil the result is the numeric prediction verbatim
// with Combined=false. With both present, confidence and estimate are the
// fixed 60/40 convex combinations; note the fused confidence is deliberately
// not re-clamped to the numeric predictor's [70,95] band.
func Fuse(numeric NumericPrediction, qual *QualitativeAssessment) FusedResult {
	if qual == nil {
		return FusedResult{
			NumericPrediction: numeric,
			Provenance:        Provenance{Combined: false},
		}
	}

	importance := make(map[string]float64, len(numeric.FeatureImportance)+2)
	for k, v := range numeric.FeatureImportance {
		importance[k] = v
	}
	importance[featureAIAnalysis] = core.Round(GeminiWeight * 100)
	importance[featureRiskAssessment] = core.Round(float64(len(qual.RiskFactors)) * 10)

	fused := numeric
	fused.Confidence = core.Round(numeric.Confidence*XAIWeight + qual.Confidence*100*GeminiWeight)
	fused.Predicted = core.Round(numeric.Predicted*XAIWeight + qual.CarbonEstimate*GeminiWeight)
	fused.FeatureImportance = importance

	return FusedResult{
		NumericPrediction: fused,
		Gemini:            qual,
		Provenance: Provenance{
			XAIWeight:    int(core.Round(XAIWeight * 100)),
			GeminiWeight: int(core.Round(GeminiWeight * 100)),
			Combined:     true,
		},
	}
}
