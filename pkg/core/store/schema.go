package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createCompaniesRaw = `
	CREATE TABLE IF NOT EXISTS companies_raw (
		id          SERIAL PRIMARY KEY,
		symbol      TEXT UNIQUE,
		cik         TEXT,
		year        INT,
		start_date  DATE,
		end_date    DATE,
		revenue     BIGINT,
		net_income  BIGINT,
		assets      BIGINT,
		liabilities BIGINT
	);
`

// company_id is not unique; append mode adds a row per run.
const createCompanyRecommendations = `
	CREATE TABLE IF NOT EXISTS company_recommendations (
		id             SERIAL PRIMARY KEY,
		company_id     INT REFERENCES companies_raw(id),
		recommendation TEXT
	);
`

// Migrate creates both tables if they do not exist. Safe to run repeatedly.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return ErrNotConfigured
	}
	for _, stmt := range []string{createCompaniesRaw, createCompanyRecommendations} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
