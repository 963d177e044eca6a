package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neeledger/domain/core"
	"neeledger/domain/fusion"
	"neeledger/domain/verdict"
	"neeledger/internal/errors"
)

func TestReviewRepository_RoundTrip(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	review := verdict.NewReview(core.NewRunID(), "r.pdf", fusion.FusedResult{
		NumericPrediction: fusion.NumericPrediction{Confidence: 88},
	})
	require.NoError(t, repo.Create(ctx, review))

	got, err := repo.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, review.ID, got.ID)
	assert.Equal(t, verdict.OutcomePending, got.Outcome)

	// Mutating the returned copy must not leak into the store.
	got.Outcome = verdict.OutcomeApproved
	again, err := repo.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, verdict.OutcomePending, again.Outcome)
}

func TestReviewRepository_CreateDuplicate(t *testing.T) {
	repo := NewReviewRepository()
	review := verdict.NewReview(core.NewRunID(), "r.pdf", fusion.FusedResult{})

	require.NoError(t, repo.Create(context.Background(), review))
	err := repo.Create(context.Background(), review)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidState, errors.GetCode(err))
}

func TestReviewRepository_UpdateMissing(t *testing.T) {
	repo := NewReviewRepository()
	review := verdict.NewReview(core.NewRunID(), "r.pdf", fusion.FusedResult{})

	err := repo.Update(context.Background(), review)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestReviewRepository_ListNewestFirst(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	older := verdict.NewReview(core.NewRunID(), "older.pdf", fusion.FusedResult{})
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := verdict.NewReview(core.NewRunID(), "newer.pdf", fusion.FusedResult{})

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer.pdf", list[0].ReportName)
	assert.Equal(t, "older.pdf", list[1].ReportName)
}
