package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neeledger/adapters/memory"
	"neeledger/domain/core"
	"neeledger/domain/fusion"
	"neeledger/domain/verdict"
	"neeledger/internal/errors"
)

func seedReview(t *testing.T, repo *memory.ReviewRepository, confidence float64) *verdict.Review {
	t.Helper()
	review := verdict.NewReview(core.NewRunID(), "r.pdf", fusion.FusedResult{
		NumericPrediction: fusion.NumericPrediction{Confidence: confidence},
	})
	require.NoError(t, repo.Create(context.Background(), review))
	return review
}

func TestReviewService_ApproveOnce(t *testing.T) {
	repo := memory.NewReviewRepository()
	svc := NewReviewService(repo)
	review := seedReview(t, repo, 90)

	decided, err := svc.Approve(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, verdict.OutcomeApproved, decided.Outcome)
	require.NotNil(t, decided.DecidedAt)

	// Second action of either kind fails: the outcome is terminal.
	_, err = svc.Reject(context.Background(), review.ID)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidState, errors.GetCode(err))

	stored, err := repo.GetByID(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, verdict.OutcomeApproved, stored.Outcome)
}

func TestReviewService_RejectPersists(t *testing.T) {
	repo := memory.NewReviewRepository()
	svc := NewReviewService(repo)
	review := seedReview(t, repo, 60)

	_, err := svc.Reject(context.Background(), review.ID)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, verdict.OutcomeRejected, stored.Outcome)
}

func TestReviewService_DecideMissing(t *testing.T) {
	svc := NewReviewService(memory.NewReviewRepository())

	_, err := svc.Approve(context.Background(), core.NewReviewID())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestReviewService_Summarize(t *testing.T) {
	repo := memory.NewReviewRepository()
	svc := NewReviewService(repo)

	approved := seedReview(t, repo, 90)
	seedReview(t, repo, 80)
	rejected := seedReview(t, repo, 70)

	_, err := svc.Approve(context.Background(), approved.ID)
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), rejected.ID)
	require.NoError(t, err)

	summary, err := svc.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 1, summary.Approved)
	assert.Equal(t, 1, summary.Rejected)

	assert.Equal(t, 80.0, summary.Confidence.Mean)
	assert.Equal(t, 80.0, summary.Confidence.Median)
	assert.Equal(t, 70.0, summary.Confidence.Min)
	assert.Equal(t, 90.0, summary.Confidence.Max)
	assert.Greater(t, summary.Confidence.StdDev, 0.0)
}

func TestReviewService_SummarizeEmpty(t *testing.T) {
	svc := NewReviewService(memory.NewReviewRepository())

	summary, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Zero(t, summary.Confidence.Mean)
}
