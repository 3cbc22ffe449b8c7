// Package pipeline runs the two batch stages: ingestion (Finnhub to
// companies_raw) and recommendation (companies_raw to company_recommendations).
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"financial_insights/pkg/core/ingest"
	"financial_insights/pkg/core/store"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
)

// Fetcher retrieves the reported financials for a symbol.
type Fetcher interface {
	FinancialsReported(ctx context.Context, symbol, freq string) (*ingest.FinancialsReported, error)
}

// Ingestion fetches, extracts and upserts the latest annual filing per symbol.
type Ingestion struct {
	fetcher Fetcher
	repo    store.CompanyRepository
	logger  arbor.ILogger
	workers int
}

// NewIngestion creates the ingestion pipeline. workers below 1 means sequential.
func NewIngestion(fetcher Fetcher, repo store.CompanyRepository, logger arbor.ILogger, workers int) *Ingestion {
	if logger == nil {
		logger = arbor.NewNoOpLogger()
	}
	if workers < 1 {
		workers = 1
	}
	return &Ingestion{fetcher: fetcher, repo: repo, logger: logger, workers: workers}
}

// Run processes symbols. Failures are recorded per symbol and never stop the
// remaining symbols.
func (p *Ingestion) Run(ctx context.Context, symbols []string) Report {
	symbols = NormalizeSymbols(symbols)
	report := Report{
		RunID:     uuid.New().String(),
		Stage:     "ingest",
		StartedAt: time.Now(),
		Items:     make([]ItemResult, len(symbols)),
	}
	logger := p.logger.WithCorrelationId(report.RunID)
	logger.Info().Strs("symbols", symbols).Int("workers", p.workers).Msg("Starting ingestion")

	forEach(ctx, p.workers, len(symbols), func(ctx context.Context, i int) {
		report.Items[i] = p.ingestOne(ctx, logger, symbols[i])
	})

	report.FinishedAt = time.Now()
	report.Log(logger)
	return report
}

func (p *Ingestion) ingestOne(ctx context.Context, logger arbor.ILogger, symbol string) ItemResult {
	item := ItemResult{Symbol: symbol}

	raw, err := p.fetcher.FinancialsReported(ctx, symbol, ingest.FrequencyAnnual)
	if err != nil {
		logger.Warn().Str("symbol", symbol).Err(err).Msg("Fetch failed, skipping")
		item.Outcome, item.Err = OutcomeFetchFailed, err
		return item
	}

	rec, err := ingest.Extract(raw, symbol)
	if errors.Is(err, ingest.ErrNoData) {
		logger.Warn().Str("symbol", symbol).Msg("No financial data, skipping")
		item.Outcome, item.Err = OutcomeNoData, err
		return item
	}
	if err != nil {
		item.Outcome, item.Err = OutcomeFetchFailed, err
		return item
	}

	id, err := p.repo.Upsert(ctx, &rec)
	if err != nil {
		logger.Error().Str("symbol", symbol).Err(err).Msg("Upsert failed")
		item.Outcome, item.Err = OutcomeStoreFailed, err
		return item
	}

	logger.Info().Str("symbol", rec.Symbol).Int64("id", id).Int("year", rec.Year).Msg("Stored financial record")
	item.CompanyID, item.Outcome = id, OutcomeStored
	return item
}

// NormalizeSymbols trims and upper-cases symbols, dropping blanks and
// duplicates while keeping first-seen order.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
