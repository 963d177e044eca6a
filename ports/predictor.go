package ports

import (
	"context"

	"neeledger/domain/fusion"
	"neeledger/domain/spectral"
)

// Predictor scores a reflectance sample into a numeric biomass prediction.
// The local implementation is synchronous; the context is carried for
// remote-served implementations.
type Predictor interface {
	Predict(ctx context.Context, sample spectral.ReflectanceSample) (fusion.NumericPrediction, error)
}
