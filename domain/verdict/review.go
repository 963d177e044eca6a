// Package verdict models the human-review outcome of a pipeline run. The
// confidence threshold only frames a recommendation for the operator; the
// state machine transitions exclusively on operator action.
package verdict

import (
	"time"

	"neeledger/domain/core"
	"neeledger/domain/fusion"
	"neeledger/internal/errors"
)

// Outcome is the review state. Pending reviews accept exactly one approve or
// reject; both end states are terminal. Resubmission after rejection is a
// brand-new pipeline run, never a transition on the rejected review.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// Recommendation is the default framing shown to the operator.
type Recommendation string

const (
	RecommendationAboveThreshold Recommendation = "above_threshold"
	RecommendationBelowThreshold Recommendation = "below_threshold"
)

// ConfidenceThreshold is the fixed percentage gate for the numeric path.
// Single source of truth; the UI repeats it only for display.
const ConfidenceThreshold = 85.0

// Recommend frames a confidence score against the fixed threshold.
func Recommend(confidence float64) Recommendation {
	if confidence >= ConfidenceThreshold {
		return RecommendationAboveThreshold
	}
	return RecommendationBelowThreshold
}

// Review is one pending-or-decided human review of a fused result.
type Review struct {
	ID             core.ReviewID      `json:"id"`
	RunID          core.RunID         `json:"runId"`
	ReportName     string             `json:"reportName"`
	Result         fusion.FusedResult `json:"result"`
	Recommendation Recommendation     `json:"recommendation"`
	Outcome        Outcome            `json:"outcome"`
	CreatedAt      time.Time          `json:"createdAt"`
	DecidedAt      *time.Time         `json:"decidedAt,omitempty"`
}

// NewReview creates a pending review for a fused result.
func NewReview(runID core.RunID, reportName string, result fusion.FusedResult) *Review {
	return &Review{
		ID:             core.NewReviewID(),
		RunID:          runID,
		ReportName:     reportName,
		Result:         result,
		Recommendation: Recommend(result.Confidence),
		Outcome:        OutcomePending,
		CreatedAt:      time.Now().UTC(),
	}
}

// Approve transitions a pending review to approved.
func (r *Review) Approve(at time.Time) error {
	return r.decide(OutcomeApproved, at)
}

// Reject transitions a pending review to rejected.
func (r *Review) Reject(at time.Time) error {
	return r.decide(OutcomeRejected, at)
}

func (r *Review) decide(outcome Outcome, at time.Time) error {
	if r.Outcome != OutcomePending {
		return errors.InvalidState("review already " + string(r.Outcome))
	}
	r.Outcome = outcome
	t := at.UTC()
	r.DecidedAt = &t
	return nil
}

// Decided reports whether the review reached a terminal state.
func (r *Review) Decided() bool {
	return r.Outcome != OutcomePending
}
