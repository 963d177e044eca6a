package app

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"

	"neeledger/domain/core"
	"neeledger/domain/verdict"
	"neeledger/internal/errors"
	"neeledger/ports"
)

// ReviewService exposes the human-override step and read access to review
// records for the dashboard.
type ReviewService struct {
	reviews ports.ReviewRepository
}

// NewReviewService creates a review service.
func NewReviewService(reviews ports.ReviewRepository) *ReviewService {
	return &ReviewService{reviews: reviews}
}

// Get returns a single review.
func (s *ReviewService) Get(ctx context.Context, id core.ReviewID) (*verdict.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// List returns all reviews, newest first (repository ordering).
func (s *ReviewService) List(ctx context.Context) ([]*verdict.Review, error) {
	return s.reviews.List(ctx)
}

// Approve applies the operator's approve action to a pending review.
func (s *ReviewService) Approve(ctx context.Context, id core.ReviewID) (*verdict.Review, error) {
	return s.decide(ctx, id, (*verdict.Review).Approve)
}

// Reject applies the operator's reject action to a pending review.
func (s *ReviewService) Reject(ctx context.Context, id core.ReviewID) (*verdict.Review, error) {
	return s.decide(ctx, id, (*verdict.Review).Reject)
}

func (s *ReviewService) decide(ctx context.Context, id core.ReviewID, transition func(*verdict.Review, time.Time) error) (*verdict.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(review, time.Now()); err != nil {
		return nil, err
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, errors.Wrap(err, "failed to persist review decision")
	}
	return review, nil
}

// Summary aggregates confidence scores across all reviews for the dashboard.
type Summary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`

	Confidence ConfidenceSummary `json:"confidence"`
}

// ConfidenceSummary holds basic distribution statistics over review
// confidences.
type ConfidenceSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes aggregate statistics over all stored reviews.
func (s *ReviewService) Summarize(ctx context.Context) (*Summary, error) {
	reviews, err := s.reviews.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(reviews)}
	confidences := make([]float64, 0, len(reviews))
	for _, r := range reviews {
		switch r.Outcome {
		case verdict.OutcomeApproved:
			summary.Approved++
		case verdict.OutcomeRejected:
			summary.Rejected++
		default:
			summary.Pending++
		}
		confidences = append(confidences, r.Result.Confidence)
	}

	if len(confidences) == 0 {
		return summary, nil
	}

	mean, err := stats.Mean(confidences)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute mean confidence")
	}
	median, err := stats.Median(confidences)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute median confidence")
	}
	stdDev, err := stats.StandardDeviation(confidences)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute confidence stddev")
	}
	min, err := stats.Min(confidences)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute min confidence")
	}
	max, err := stats.Max(confidences)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute max confidence")
	}

	summary.Confidence = ConfidenceSummary{
		Mean:   core.RoundTo(mean, 2),
		Median: core.RoundTo(median, 2),
		StdDev: core.RoundTo(stdDev, 2),
		Min:    min,
		Max:    max,
	}
	return summary, nil
}
