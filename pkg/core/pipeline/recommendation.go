package pipeline

import (
	"context"
	"fmt"
	"time"

	"financial_insights/pkg/core/insight"
	"financial_insights/pkg/core/store"
	"financial_insights/pkg/models"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
)

// RecordLister lists stored financial records.
type RecordLister interface {
	List(ctx context.Context) ([]models.FinancialRecord, error)
}

// Generator produces a recommendation for one record.
type Generator interface {
	Generate(ctx context.Context, rec models.FinancialRecord) insight.Result
}

// Recommendation generates and stores one recommendation per stored record.
type Recommendation struct {
	records   RecordLister
	generator Generator
	repo      store.RecommendationRepository
	logger    arbor.ILogger
	workers   int
}

// NewRecommendation creates the recommendation pipeline.
func NewRecommendation(records RecordLister, generator Generator, repo store.RecommendationRepository, logger arbor.ILogger, workers int) *Recommendation {
	if logger == nil {
		logger = arbor.NewNoOpLogger()
	}
	if workers < 1 {
		workers = 1
	}
	return &Recommendation{records: records, generator: generator, repo: repo, logger: logger, workers: workers}
}

// Run lists every record and stores a recommendation for each. Only the
// initial listing is fatal. Failed generations are stored as error text.
func (p *Recommendation) Run(ctx context.Context) (Report, error) {
	report := Report{
		RunID:     uuid.New().String(),
		Stage:     "recommend",
		StartedAt: time.Now(),
	}
	logger := p.logger.WithCorrelationId(report.RunID)

	records, err := p.records.List(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list financial records: %w", err)
	}
	logger.Info().Int("records", len(records)).Int("workers", p.workers).Msg("Starting recommendations")

	report.Items = make([]ItemResult, len(records))
	forEach(ctx, p.workers, len(records), func(ctx context.Context, i int) {
		report.Items[i] = p.recommendOne(ctx, logger, records[i])
	})

	report.FinishedAt = time.Now()
	report.Log(logger)
	return report, nil
}

func (p *Recommendation) recommendOne(ctx context.Context, logger arbor.ILogger, rec models.FinancialRecord) ItemResult {
	item := ItemResult{Symbol: rec.Symbol, CompanyID: rec.ID}

	res := p.generator.Generate(ctx, rec)

	if _, err := p.repo.Save(ctx, rec.ID, res.Recommendation()); err != nil {
		logger.Error().Str("symbol", rec.Symbol).Int64("company_id", rec.ID).Err(err).Msg("Failed to store recommendation")
		item.Outcome, item.Err = OutcomeStoreFailed, err
		return item
	}

	if res.Failed() {
		logger.Warn().Str("symbol", rec.Symbol).Err(res.Err).Msg("Stored error-marked recommendation")
		item.Outcome, item.Err = OutcomeGenerationFailed, res.Err
		return item
	}

	logger.Info().Str("symbol", rec.Symbol).Int64("company_id", rec.ID).Msg("Stored recommendation")
	item.Outcome = OutcomeGenerated
	return item
}
