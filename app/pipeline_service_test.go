package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neeledger/adapters/memory"
	"neeledger/adapters/predictor"
	"neeledger/domain/fusion"
	"neeledger/domain/spectral"
	"neeledger/domain/verdict"
	"neeledger/internal/errors"
)

var pipelineSample = spectral.ReflectanceSample{B2: 0.05, B3: 0.06, B4: 0.04, B8: 0.3, Species: "Mangrove"}

// stubAnalyzer returns a fixed assessment or error, optionally blocking
// until the context is canceled.
type stubAnalyzer struct {
	assessment *fusion.QualitativeAssessment
	err        error
	blockOnCtx bool
}

func (s *stubAnalyzer) Analyze(ctx context.Context, _ string, _ spectral.ReflectanceSample, _ spectral.Indices) (*fusion.QualitativeAssessment, error) {
	if s.blockOnCtx {
		<-ctx.Done()
		return nil, errors.ExternalService("analysis canceled", ctx.Err())
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.assessment, nil
}

func pipelineRequest() VerificationRequest {
	return VerificationRequest{
		ReportName:  "monitoring_q1.pdf",
		ReportText:  "Claimed removal: 1250 tCO2e across 40ha of replanted mangrove.",
		Claimed:     1250,
		Sample:      pipelineSample,
		UseAnalysis: true,
	}
}

func TestRun_FusedPath(t *testing.T) {
	repo := memory.NewReviewRepository()
	analyzer := &stubAnalyzer{assessment: &fusion.QualitativeAssessment{
		Analysis:       "Consistent with imagery.",
		Confidence:     0.9,
		RiskFactors:    []string{"cloud cover"},
		CarbonEstimate: 1200,
	}}
	svc := NewPipelineService(predictor.NewSeededBiomassPredictor(3), analyzer, repo, time.Second)

	res, err := svc.Run(context.Background(), pipelineRequest())
	require.NoError(t, err)

	assert.True(t, res.Result.Provenance.Combined)
	assert.Equal(t, 60, res.Result.Provenance.XAIWeight)
	assert.Equal(t, 1250.0, res.Result.Claimed)
	require.NotNil(t, res.Result.Gemini)

	// The pending review was persisted with the fused result.
	review, err := repo.GetByID(context.Background(), res.ReviewID)
	require.NoError(t, err)
	assert.Equal(t, verdict.OutcomePending, review.Outcome)
	assert.Equal(t, res.Result.Confidence, review.Result.Confidence)
	assert.Equal(t, verdict.Recommend(res.Result.Confidence), res.Recommendation)
}

func TestRun_AnalyzerFailureFallsBack(t *testing.T) {
	repo := memory.NewReviewRepository()
	analyzer := &stubAnalyzer{err: errors.ExternalService("upstream 503", nil)}
	svc := NewPipelineService(predictor.NewSeededBiomassPredictor(3), analyzer, repo, time.Second)

	res, err := svc.Run(context.Background(), pipelineRequest())
	require.NoError(t, err)

	assert.False(t, res.Result.Provenance.Combined)
	assert.Nil(t, res.Result.Gemini)
	// Numeric fields intact despite the failed analysis.
	assert.Equal(t, 0.765, res.Result.NDVI)
}

func TestRun_AnalyzerTimeoutFallsBack(t *testing.T) {
	repo := memory.NewReviewRepository()
	analyzer := &stubAnalyzer{blockOnCtx: true}
	svc := NewPipelineService(predictor.NewSeededBiomassPredictor(3), analyzer, repo, 20*time.Millisecond)

	start := time.Now()
	res, err := svc.Run(context.Background(), pipelineRequest())
	require.NoError(t, err)

	assert.False(t, res.Result.Provenance.Combined)
	assert.Less(t, time.Since(start), 5*time.Second, "timeout fallback must not hang")
}

func TestRun_AnalysisDisabled(t *testing.T) {
	repo := memory.NewReviewRepository()
	analyzer := &stubAnalyzer{assessment: &fusion.QualitativeAssessment{Confidence: 0.9, CarbonEstimate: 1200}}
	svc := NewPipelineService(predictor.NewSeededBiomassPredictor(3), analyzer, repo, time.Second)

	req := pipelineRequest()
	req.UseAnalysis = false

	res, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Result.Provenance.Combined)
}

func TestRun_NoAnalyzerConfigured(t *testing.T) {
	repo := memory.NewReviewRepository()
	svc := NewPipelineService(predictor.NewSeededBiomassPredictor(3), nil, repo, time.Second)

	res, err := svc.Run(context.Background(), pipelineRequest())
	require.NoError(t, err)
	assert.False(t, res.Result.Provenance.Combined)
}
