package fusion

// NumericPrediction is the biomass model's output for one scoring request.
// Immutable after creation; Claimed is externally supplied, everything else
// is derived from the reflectance sample.
type NumericPrediction struct {
	Claimed           float64            `json:"claimed"`
	Predicted         float64            `json:"predicted"`
	Confidence        float64            `json:"confidence"` // 0-100, clamped to [70,95] at the source
	NDVI              float64            `json:"ndvi"`
	EVI               float64            `json:"evi"`
	SAVI              float64            `json:"savi"`
	FeatureImportance map[string]float64 `json:"featureImportance"`
}

// QualitativeAssessment is the parsed output of the language-model analysis
// of a monitoring report. Confidence is a fraction on [0,1]; CarbonEstimate
// is the model's independent tonnage estimate.
type QualitativeAssessment struct {
	Analysis        string   `json:"analysis"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations"`
	RiskFactors     []string `json:"riskFactors"`
	CarbonEstimate  float64  `json:"carbonEstimate"`
}

// Provenance records how a fused result was produced.
type Provenance struct {
	XAIWeight    int  `json:"xaiWeight"`    // percent
	GeminiWeight int  `json:"geminiWeight"` // percent
	Combined     bool `json:"combined"`
}

// FusedResult is the pipeline's final score. It always embeds exactly one
// NumericPrediction; the qualitative block is present only when fusion
// occurred.
type FusedResult struct {
	NumericPrediction
	Gemini     *QualitativeAssessment `json:"geminiInsights,omitempty"`
	Provenance Provenance             `json:"modelCombination"`
}
