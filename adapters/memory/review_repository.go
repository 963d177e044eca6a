// Package memory provides an in-process review store used when no database
// is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"neeledger/domain/core"
	"neeledger/domain/verdict"
	"neeledger/internal/errors"
	"neeledger/ports"
)

// ReviewRepository is a mutex-guarded in-memory implementation of
// ports.ReviewRepository.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[core.ReviewID]*verdict.Review
}

// NewReviewRepository creates an empty in-memory review store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{reviews: make(map[core.ReviewID]*verdict.Review)}
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)

func (r *ReviewRepository) Create(_ context.Context, review *verdict.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reviews[review.ID]; exists {
		return errors.InvalidState("review already exists: " + review.ID.String())
	}
	copied := *review
	r.reviews[review.ID] = &copied
	return nil
}

func (r *ReviewRepository) GetByID(_ context.Context, id core.ReviewID) (*verdict.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, errors.NotFound("review " + id.String())
	}
	copied := *review
	return &copied, nil
}

func (r *ReviewRepository) Update(_ context.Context, review *verdict.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[review.ID]; !ok {
		return errors.NotFound("review " + review.ID.String())
	}
	copied := *review
	r.reviews[review.ID] = &copied
	return nil
}

func (r *ReviewRepository) List(_ context.Context) ([]*verdict.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*verdict.Review, 0, len(r.reviews))
	for _, review := range r.reviews {
		copied := *review
		out = append(out, &copied)
	}
	// Newest first; UUIDv7 review IDs are time-ordered but CreatedAt is the
	// authoritative ordering key.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
