package store

import (
	"context"
	"fmt"

	"financial_insights/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CompanyRepository persists normalized financial records keyed by symbol.
type CompanyRepository interface {
	Upsert(ctx context.Context, rec *models.FinancialRecord) (int64, error)
	List(ctx context.Context) ([]models.FinancialRecord, error)
}

// CompanyRepo stores FinancialRecords in companies_raw.
type CompanyRepo struct {
	pool *pgxpool.Pool
}

var _ CompanyRepository = (*CompanyRepo)(nil)

// NewCompanyRepo creates a repository on the given pool.
func NewCompanyRepo(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

// Upsert inserts rec, or overwrites every non-key column of the existing row with
// the same symbol. It returns the row id, which is stable across updates, and
// sets rec.ID to it.
func (r *CompanyRepo) Upsert(ctx context.Context, rec *models.FinancialRecord) (int64, error) {
	if r.pool == nil {
		return 0, ErrNotConfigured
	}
	if rec.Symbol == "" {
		return 0, fmt.Errorf("failed to upsert company: empty symbol")
	}

	query := `
		INSERT INTO companies_raw (symbol, cik, year, start_date, end_date, revenue, net_income, assets, liabilities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (symbol) DO UPDATE
		SET cik = EXCLUDED.cik,
			year = EXCLUDED.year,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			revenue = EXCLUDED.revenue,
			net_income = EXCLUDED.net_income,
			assets = EXCLUDED.assets,
			liabilities = EXCLUDED.liabilities
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		rec.Symbol, rec.CIK, rec.Year, rec.StartDate, rec.EndDate,
		rec.Revenue, rec.NetIncome, rec.Assets, rec.Liabilities,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert company %s: %w", rec.Symbol, err)
	}

	rec.ID = id
	return id, nil
}

// List returns every stored record ordered by id.
func (r *CompanyRepo) List(ctx context.Context) ([]models.FinancialRecord, error) {
	if r.pool == nil {
		return nil, ErrNotConfigured
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, symbol, cik, year, start_date, end_date, revenue, net_income, assets, liabilities
		FROM companies_raw
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var records []models.FinancialRecord
	for rows.Next() {
		var rec models.FinancialRecord
		var year *int32
		if err := rows.Scan(
			&rec.ID, &rec.Symbol, &rec.CIK, &year, &rec.StartDate, &rec.EndDate,
			&rec.Revenue, &rec.NetIncome, &rec.Assets, &rec.Liabilities,
		); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		if year != nil {
			rec.Year = int(*year)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read companies: %w", err)
	}
	return records, nil
}
