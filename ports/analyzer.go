package ports

import (
	"context"

	"neeledger/domain/fusion"
	"neeledger/domain/spectral"
)

// Analyzer produces a qualitative assessment of a monitoring report given the
// satellite metrics for the same claim. Implementations are allowed to vary
// run-to-run and to fail; the pipeline treats failures as recoverable and
// proceeds numeric-only. Implementations must honor ctx cancellation.
type Analyzer interface {
	Analyze(ctx context.Context, reportText string, sample spectral.ReflectanceSample, indices spectral.Indices) (*fusion.QualitativeAssessment, error)
}
