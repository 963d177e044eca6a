// Package postgres persists review records. The fused result is stored as a
// JSONB document; lifecycle fields are first-class columns so the dashboard
// can filter on them.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"neeledger/domain/core"
	"neeledger/domain/fusion"
	"neeledger/domain/verdict"
	"neeledger/internal/errors"
	"neeledger/ports"
)

type reviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a Postgres-backed review repository
func NewReviewRepository(db *sqlx.DB) ports.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *verdict.Review) error {
	resultJSON, err := json.Marshal(review.Result)
	if err != nil {
		return errors.Wrap(err, "failed to marshal fused result")
	}

	query := `INSERT INTO reviews (
		id, run_id, report_name, result, recommendation, outcome, created_at, decided_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		review.ID.String(), review.RunID.String(), review.ReportName, resultJSON,
		string(review.Recommendation), string(review.Outcome), review.CreatedAt, review.DecidedAt,
	)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to create review"))
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id core.ReviewID) (*verdict.Review, error) {
	query := `SELECT id, run_id, report_name, result, recommendation, outcome, created_at, decided_at
	FROM reviews WHERE id = $1`

	review, err := scanReview(r.db.QueryRowxContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("review " + id.String())
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to load review"))
	}
	return review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *verdict.Review) error {
	query := `UPDATE reviews SET outcome = $1, decided_at = $2 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, string(review.Outcome), review.DecidedAt, review.ID.String())
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to update review"))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to read update result"))
	}
	if affected == 0 {
		return errors.NotFound("review " + review.ID.String())
	}
	return nil
}

func (r *reviewRepository) List(ctx context.Context) ([]*verdict.Review, error) {
	query := `SELECT id, run_id, report_name, result, recommendation, outcome, created_at, decided_at
	FROM reviews ORDER BY created_at DESC`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to list reviews"))
	}
	defer rows.Close()

	var reviews []*verdict.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to scan review"))
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to iterate reviews"))
	}
	return reviews, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReview(row rowScanner) (*verdict.Review, error) {
	var (
		review         verdict.Review
		id, runID      string
		recommendation string
		outcome        string
		resultJSON     []byte
		decidedAt      sql.NullTime
	)

	err := row.Scan(&id, &runID, &review.ReportName, &resultJSON,
		&recommendation, &outcome, &review.CreatedAt, &decidedAt)
	if err != nil {
		return nil, err
	}

	var result fusion.FusedResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal fused result")
	}

	review.ID = core.ReviewID(id)
	review.RunID = core.RunID(runID)
	review.Result = result
	review.Recommendation = verdict.Recommendation(recommendation)
	review.Outcome = verdict.Outcome(outcome)
	if decidedAt.Valid {
		t := decidedAt.Time.UTC()
		review.DecidedAt = &t
	}
	return &review, nil
}
