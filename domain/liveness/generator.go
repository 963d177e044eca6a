// Package liveness fabricates reproducible verification metrics from an
// uploaded report's code phrase and file name. The generator is pure: the
// same seed key always emits the same draw sequence, across processes, so
// repeated verification of the same upload renders the same scores.
//
// This is a demo scoring surface, not a biometric liveness detector.
package liveness

import (
	"neeledger/domain/core"
)

// Authenticity is the pass/fail flag derived from the composite score.
type Authenticity string

const (
	AuthenticityPass Authenticity = "Pass"
	AuthenticityFail Authenticity = "Fail"
)

// Category is the coarse review-routing bucket for a composite score.
type Category string

const (
	CategoryAutoPreApprove Category = "Auto Pre-approve"
	CategoryManualReview   Category = "ACVA Manual Review"
	CategoryFieldAudit     Category = "Field Audit"
)

// Composite-score thresholds. PassThreshold gates authenticity and the
// manual-review band; AutoApproveThreshold gates the auto-pre-approve band.
const (
	PassThreshold        = 0.70
	AutoApproveThreshold = 0.95
)

// Score holds the liveness sub-scores and their derived routing fields.
type Score struct {
	Movement  float64      `json:"movementScore"`
	LipSync   float64      `json:"lipSyncScore"`
	Composite float64      `json:"livenessScore"`
	Verdict   Authenticity `json:"authenticity"`
}

// Metrics holds the reproducible payload fields derived from the same seed.
// They are illustrative display values, not decision inputs.
type Metrics struct {
	TreeCount   int     `json:"treeCount"`
	CanopyCover float64 `json:"canopyCover"`
	CO2Tonnes   float64 `json:"co2Tonnes"`
	Uncertainty float64 `json:"uncertainty"`
}

// Result is one full draw from a seed key.
type Result struct {
	Metrics
	Liveness Score    `json:"liveness"`
	Category Category `json:"decisionCategory"`
}

// FNV-1a 32-bit parameters.
const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619
)

// Generator emits a deterministic stream of values in [0,1) seeded from a
// string key. The mixing step follows Mulberry32: a fixed odd increment, then
// two XOR-shift-multiply rounds, all in 32-bit unsigned arithmetic.
type Generator struct {
	state uint32
}

// NewGenerator folds the key into a 32-bit seed with FNV-1a.
func NewGenerator(key string) *Generator {
	h := fnvOffsetBasis
	for _, r := range key {
		h ^= uint32(r)
		h *= fnvPrime
	}
	return &Generator{state: h}
}

// Next emits the next value in [0,1).
func (g *Generator) Next() float64 {
	g.state += 0x6D2B79F5
	t := (g.state ^ (g.state >> 15)) * (1 | g.state)
	t = (t + (t^(t>>7))*(61|t)) ^ t
	return float64(t^(t>>14)) / 4294967295
}

// SeedKey builds the canonical seed key for a verification request.
func SeedKey(codePhrase, fileName string) string {
	return codePhrase + "|" + fileName
}

// VerdictFor derives the pass/fail flag for a composite score.
func VerdictFor(composite float64) Authenticity {
	if composite >= PassThreshold {
		return AuthenticityPass
	}
	return AuthenticityFail
}

// CategoryFor routes a composite score into one of the three contiguous
// decision bands.
func CategoryFor(composite float64) Category {
	switch {
	case composite >= AutoApproveThreshold:
		return CategoryAutoPreApprove
	case composite >= PassThreshold:
		return CategoryManualReview
	default:
		return CategoryFieldAudit
	}
}

// Verify runs the full deterministic draw for a code phrase and file name.
// Draw order is fixed: movement, lip-sync, tree count, canopy cover, CO2
// factor, uncertainty. Reordering would change every derived value for
// existing keys.
func Verify(codePhrase, fileName string) Result {
	g := NewGenerator(SeedKey(codePhrase, fileName))

	movement := core.Clamp(0.4+g.Next()*0.6, 0, 1)
	lipSync := core.Clamp(0.3+g.Next()*0.7, 0, 1)
	composite := core.RoundTo(0.5*movement+0.5*lipSync, 3)

	// Ranges: trees 50-1000, canopy 20%-80%, uncertainty 0.05-0.35.
	treeCount := int(core.Round(50 + g.Next()*950))
	canopyCover := core.RoundTo(20+g.Next()*60, 1)
	co2Tonnes := core.RoundTo(float64(treeCount)*(0.8+g.Next()*1.5), 2)
	uncertainty := core.RoundTo(0.05+g.Next()*0.3, 3)

	return Result{
		Metrics: Metrics{
			TreeCount:   treeCount,
			CanopyCover: canopyCover,
			CO2Tonnes:   co2Tonnes,
			Uncertainty: uncertainty,
		},
		Liveness: Score{
			Movement:  movement,
			LipSync:   lipSync,
			Composite: composite,
			Verdict:   VerdictFor(composite),
		},
		Category: CategoryFor(composite),
	}
}
