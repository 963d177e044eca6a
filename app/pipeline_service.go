package app

import (
	"context"
	"log"
	"time"

	"neeledger/domain/core"
	"neeledger/domain/fusion"
	"neeledger/domain/spectral"
	"neeledger/domain/verdict"
	"neeledger/internal/errors"
	"neeledger/ports"
)

const defaultAnalysisTimeout = 45 * time.Second

// PipelineService orchestrates one scoring run: numeric prediction always,
// qualitative analysis concurrently when enabled, fusion, and creation of a
// pending review. The qualitative path can fail or time out without failing
// the run; the result degrades to numeric-only.
type PipelineService struct {
	predictor       ports.Predictor
	analyzer        ports.Analyzer // nil when no analysis backend is configured
	reviews         ports.ReviewRepository
	analysisTimeout time.Duration
}

// NewPipelineService creates a pipeline service. analyzer may be nil.
func NewPipelineService(predictor ports.Predictor, analyzer ports.Analyzer, reviews ports.ReviewRepository, analysisTimeout time.Duration) *PipelineService {
	if analysisTimeout <= 0 {
		analysisTimeout = defaultAnalysisTimeout
	}
	return &PipelineService{
		predictor:       predictor,
		analyzer:        analyzer,
		reviews:         reviews,
		analysisTimeout: analysisTimeout,
	}
}

// VerificationRequest carries one uploaded claim through the pipeline.
type VerificationRequest struct {
	ReportName  string
	ReportText  string
	Claimed     float64
	Sample      spectral.ReflectanceSample
	UseAnalysis bool
}

// VerificationResult is the pipeline's answer plus the pending review it
// opened for the operator.
type VerificationResult struct {
	RunID          core.RunID             `json:"runId"`
	ReviewID       core.ReviewID          `json:"reviewId"`
	Result         fusion.FusedResult     `json:"result"`
	Recommendation verdict.Recommendation `json:"recommendation"`
}

type analysisOutcome struct {
	assessment *fusion.QualitativeAssessment
	err        error
}

// Run executes the pipeline for one request. Only a numeric-path failure
// fails the run; every qualitative-path failure is logged and recovered by
// fusing nothing.
func (s *PipelineService) Run(ctx context.Context, req VerificationRequest) (*VerificationResult, error) {
	runID := core.NewRunID()

	// Kick off the qualitative analysis before the numeric work so the two
	// run concurrently; they have no data dependency on each other.
	var analysisCh chan analysisOutcome
	var analysisCtx context.Context
	var cancelAnalysis context.CancelFunc
	if req.UseAnalysis && s.analyzer != nil {
		analysisCtx, cancelAnalysis = context.WithTimeout(ctx, s.analysisTimeout)
		defer cancelAnalysis()

		analysisCh = make(chan analysisOutcome, 1)
		go func() {
			indices := spectral.Compute(req.Sample)
			assessment, err := s.analyzer.Analyze(analysisCtx, req.ReportText, req.Sample, indices)
			analysisCh <- analysisOutcome{assessment: assessment, err: err}
		}()
	}

	numeric, err := s.predictor.Predict(ctx, req.Sample)
	if err != nil {
		return nil, err
	}
	numeric.Claimed = req.Claimed

	var assessment *fusion.QualitativeAssessment
	if analysisCh != nil {
		select {
		case outcome := <-analysisCh:
			if outcome.err != nil {
				// Never a hard failure: every analysis error degrades to the
				// numeric-only result.
				log.Printf("[Pipeline] run=%s analysis failed (%s), continuing numeric-only: %v",
					runID, errors.GetCode(outcome.err), outcome.err)
			} else {
				assessment = outcome.assessment
			}
		case <-analysisCtx.Done():
			// The analyzer is contractually bound to return on cancellation;
			// not waiting for it here keeps a misbehaving backend from
			// stalling the whole request.
			log.Printf("[Pipeline] run=%s analysis timed out after %v, continuing numeric-only", runID, s.analysisTimeout)
		}
	}

	fused := fusion.Fuse(numeric, assessment)

	review := verdict.NewReview(runID, req.ReportName, fused)
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, errors.Wrap(err, "failed to persist review")
	}

	return &VerificationResult{
		RunID:          runID,
		ReviewID:       review.ID,
		Result:         fused,
		Recommendation: review.Recommendation,
	}, nil
}
