package ports

import (
	"context"

	"neeledger/domain/core"
	"neeledger/domain/verdict"
)

// ReviewRepository persists review records across the pending -> decided
// lifecycle.
type ReviewRepository interface {
	Create(ctx context.Context, review *verdict.Review) error
	GetByID(ctx context.Context, id core.ReviewID) (*verdict.Review, error)
	Update(ctx context.Context, review *verdict.Review) error
	List(ctx context.Context) ([]*verdict.Review, error)
}
