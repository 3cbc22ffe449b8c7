package store

import (
	"context"
	"fmt"

	"financial_insights/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WriteMode selects what Save does with rows already stored for a company.
type WriteMode string

const (
	// ModeAppend adds a row per call; reruns accumulate an audit trail of every
	// generation attempt.
	ModeAppend WriteMode = "append"
	// ModeReplace deletes the company's previous rows and inserts the new one in
	// a single transaction.
	ModeReplace WriteMode = "replace"
)

// RecommendationRepository persists generated recommendations.
type RecommendationRepository interface {
	Save(ctx context.Context, companyID int64, text string) (int64, error)
	List(ctx context.Context) ([]models.Recommendation, error)
}

// RecommendationRepo stores rows in company_recommendations.
type RecommendationRepo struct {
	pool *pgxpool.Pool
	mode WriteMode
}

var _ RecommendationRepository = (*RecommendationRepo)(nil)

// NewRecommendationRepo creates a repository. An empty mode means ModeAppend.
func NewRecommendationRepo(pool *pgxpool.Pool, mode WriteMode) *RecommendationRepo {
	if mode == "" {
		mode = ModeAppend
	}
	return &RecommendationRepo{pool: pool, mode: mode}
}

// Mode reports the configured write mode.
func (r *RecommendationRepo) Mode() WriteMode {
	return r.mode
}

// Save writes one recommendation according to the repository's mode and returns its id.
func (r *RecommendationRepo) Save(ctx context.Context, companyID int64, text string) (int64, error) {
	switch r.mode {
	case ModeAppend:
		return r.Insert(ctx, companyID, text)
	case ModeReplace:
		return r.Replace(ctx, companyID, text)
	default:
		return 0, fmt.Errorf("unknown recommendation write mode %q", r.mode)
	}
}

// Insert appends a row. There is no uniqueness on company_id.
func (r *RecommendationRepo) Insert(ctx context.Context, companyID int64, text string) (int64, error) {
	if r.pool == nil {
		return 0, ErrNotConfigured
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO company_recommendations (company_id, recommendation)
		VALUES ($1, $2)
		RETURNING id
	`, companyID, text).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recommendation for company %d: %w", companyID, err)
	}
	return id, nil
}

// Replace deletes the company's existing rows and inserts text, atomically.
// The connection is held only for the transaction and released on every path.
func (r *RecommendationRepo) Replace(ctx context.Context, companyID int64, text string) (int64, error) {
	if r.pool == nil {
		return 0, ErrNotConfigured
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	var id int64
	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM company_recommendations WHERE company_id = $1`, companyID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO company_recommendations (company_id, recommendation)
			VALUES ($1, $2)
			RETURNING id
		`, companyID, text).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to replace recommendation for company %d: %w", companyID, err)
	}
	return id, nil
}

// List returns every stored recommendation ordered by id.
func (r *RecommendationRepo) List(ctx context.Context) ([]models.Recommendation, error) {
	if r.pool == nil {
		return nil, ErrNotConfigured
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, recommendation
		FROM company_recommendations
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var recs []models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		var companyID *int64
		var text *string
		if err := rows.Scan(&rec.ID, &companyID, &text); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		if companyID != nil {
			rec.CompanyID = *companyID
		}
		if text != nil {
			rec.Recommendation = *text
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recommendations: %w", err)
	}
	return recs, nil
}
