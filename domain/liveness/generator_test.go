package liveness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Deterministic(t *testing.T) {
	keys := []string{
		"",
		"|",
		"open-sesame|demo.webm",
		"open-sesame|demo2.webm",
		"código|vídeo.webm", // non-ASCII code points fold by rune
	}

	for _, key := range keys {
		a := NewGenerator(key)
		b := NewGenerator(key)
		for i := 0; i < 16; i++ {
			assert.Equal(t, a.Next(), b.Next(), "key %q draw %d diverged", key, i)
		}
	}
}

func TestGenerator_DistinctKeysDiverge(t *testing.T) {
	a := NewGenerator(SeedKey("open-sesame", "demo.webm"))
	b := NewGenerator(SeedKey("open-sesame", "demo.mp4"))

	same := true
	for i := 0; i < 8; i++ {
		if a.Next() != b.Next() {
			same = false
			break
		}
	}
	assert.False(t, same, "different keys should not emit identical streams")
}

func TestGenerator_Range(t *testing.T) {
	g := NewGenerator("range-check")
	for i := 0; i < 1000; i++ {
		v := g.Next()
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestVerify_Reproducible(t *testing.T) {
	first := Verify("open-sesame", "demo.webm")
	second := Verify("open-sesame", "demo.webm")

	// The whole payload must match, not just the liveness block.
	assert.Equal(t, first, second)
}

func TestVerify_Invariants(t *testing.T) {
	// A spread of keys exercising the clamps and derivations.
	keys := [][2]string{
		{"", ""},
		{"open-sesame", "demo.webm"},
		{"alpha", "beta.mp4"},
		{"project-7", "site_visit.webm"},
		{"zz", "zz"},
	}

	for _, k := range keys {
		res := Verify(k[0], k[1])

		assert.GreaterOrEqual(t, res.Liveness.Movement, 0.4)
		assert.LessOrEqual(t, res.Liveness.Movement, 1.0)
		assert.GreaterOrEqual(t, res.Liveness.LipSync, 0.3)
		assert.LessOrEqual(t, res.Liveness.LipSync, 1.0)

		// Composite is the rounded midpoint of the two sub-scores.
		mid := 0.5*res.Liveness.Movement + 0.5*res.Liveness.LipSync
		assert.InDelta(t, mid, res.Liveness.Composite, 0.0005)

		assert.Equal(t, VerdictFor(res.Liveness.Composite), res.Liveness.Verdict)
		assert.Equal(t, CategoryFor(res.Liveness.Composite), res.Category)

		assert.GreaterOrEqual(t, res.TreeCount, 50)
		assert.LessOrEqual(t, res.TreeCount, 1000)
		assert.GreaterOrEqual(t, res.CanopyCover, 20.0)
		assert.LessOrEqual(t, res.CanopyCover, 80.05) // display-rounded to 1dp
		assert.GreaterOrEqual(t, res.Uncertainty, 0.05)
		assert.LessOrEqual(t, res.Uncertainty, 0.3505)
		assert.GreaterOrEqual(t, res.CO2Tonnes, float64(res.TreeCount)*0.8-0.005)
		assert.LessOrEqual(t, res.CO2Tonnes, float64(res.TreeCount)*2.3+0.005)
	}
}

func TestVerdictFor_Boundary(t *testing.T) {
	assert.Equal(t, AuthenticityPass, VerdictFor(0.70))
	assert.Equal(t, AuthenticityFail, VerdictFor(0.699))
	assert.Equal(t, AuthenticityPass, VerdictFor(1.0))
	assert.Equal(t, AuthenticityFail, VerdictFor(0.0))
}

func TestCategoryFor_PartitionsWithoutGaps(t *testing.T) {
	tests := []struct {
		score float64
		want  Category
	}{
		{0.0, CategoryFieldAudit},
		{0.699, CategoryFieldAudit},
		{0.70, CategoryManualReview},
		{0.85, CategoryManualReview},
		{0.949, CategoryManualReview},
		{0.95, CategoryAutoPreApprove},
		{1.0, CategoryAutoPreApprove},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryFor(tt.score), "score %v", tt.score)
	}

	// Every representable 3-decimal score lands in exactly one band.
	for i := 0; i <= 1000; i++ {
		s := float64(i) / 1000
		c := CategoryFor(s)
		assert.Contains(t, []Category{CategoryFieldAudit, CategoryManualReview, CategoryAutoPreApprove}, c)
	}
}
