package main

import (
	"context"
	"fmt"

	"financial_insights/pkg/core/ingest"
	"financial_insights/pkg/core/insight"
	"financial_insights/pkg/core/llm"
	"financial_insights/pkg/core/pipeline"
	"financial_insights/pkg/core/prompt"
	"financial_insights/pkg/core/scheduler"
	"financial_insights/pkg/core/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// --- Migrate Command ---

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the companies_raw and company_recommendations tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := store.Migrate(ctx, pool); err != nil {
			return err
		}
		logger.Info().Msg("Schema is up to date")
		return nil
	},
}

// --- Ingest Command ---

var ingestCmd = &cobra.Command{
	Use:   "ingest [SYMBOL...]",
	Short: "Fetch the latest annual financials and upsert them",
	Long:  "Fetch the latest annual reported financials for each symbol (default: pipeline.symbols) and upsert them into companies_raw.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateIngest(); err != nil {
			return err
		}
		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		runIngest(ctx, cmd, pool, args)
		return nil
	},
}

// --- Recommend Command ---

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Generate a recommendation for every stored record",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateRecommend(); err != nil {
			return err
		}
		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		return runRecommend(ctx, cmd, pool)
	},
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run [SYMBOL...]",
	Short: "Ingest, then generate recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateAll(); err != nil {
			return err
		}
		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		runIngest(ctx, cmd, pool, args)
		return runRecommend(ctx, cmd, pool)
	},
}

// --- Schedule Command ---

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run ingest and recommend on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateAll(); err != nil {
			return err
		}
		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		sched := scheduler.NewScheduler(func(ctx context.Context) error {
			runIngest(ctx, cmd, pool, nil)
			return runRecommend(ctx, cmd, pool)
		}, logger, 0)

		if now, _ := cmd.Flags().GetBool("now"); now {
			_ = sched.RunNow(ctx)
		}
		if err := sched.Start(ctx, cfg.Schedule.Cron); err != nil {
			return err
		}

		<-ctx.Done()
		sched.Stop()
		return nil
	},
}

func init() {
	scheduleCmd.Flags().Bool("now", false, "run once immediately before waiting for the schedule")
}

func validateAll() error {
	if err := cfg.ValidateIngest(); err != nil {
		return err
	}
	return cfg.ValidateRecommend()
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := store.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func workers(cmd *cobra.Command) int {
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		return n
	}
	return cfg.Pipeline.Workers
}

func runIngest(ctx context.Context, cmd *cobra.Command, pool *pgxpool.Pool, symbols []string) pipeline.Report {
	if len(symbols) == 0 {
		symbols = cfg.Pipeline.Symbols
	}
	client := ingest.NewFinnhubClient(cfg.Finnhub.APIKey,
		ingest.WithBaseURL(cfg.Finnhub.BaseURL),
		ingest.WithTimeout(cfg.Finnhub.Timeout),
		ingest.WithRateLimit(cfg.Finnhub.RequestsPerSecond),
	)
	p := pipeline.NewIngestion(client, store.NewCompanyRepo(pool), logger, workers(cmd))
	return p.Run(ctx, symbols)
}

func runRecommend(ctx context.Context, cmd *cobra.Command, pool *pgxpool.Pool) error {
	provider, err := llm.NewProvider(ctx, llm.Settings{
		Provider:     cfg.LLM.Provider,
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		Model:        cfg.LLM.Model,
		Temperature:  cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
		Timeout:      cfg.LLM.Timeout,
		GeminiAPIKey: cfg.LLM.GeminiAPIKey,
		ClaudeAPIKey: cfg.LLM.ClaudeAPIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	prompts := prompt.NewRegistry()
	n, err := prompt.LoadFromDirectory(prompts, cfg.Prompts.Dir)
	if err != nil {
		logger.Warn().Err(err).Msg("Falling back to built-in prompts")
	} else if n > 0 {
		logger.Info().Int("prompts", n).Str("dir", cfg.Prompts.Dir).Msg("Loaded prompt library")
	}
	logger.Debug().Strs("prompts", prompts.ListPrompts()).Msg("Prompt registry")

	p := pipeline.NewRecommendation(
		store.NewCompanyRepo(pool),
		insight.NewGenerator(provider, prompts, logger),
		store.NewRecommendationRepo(pool, store.WriteMode(cfg.Recommendations.Mode)),
		logger,
		workers(cmd),
	)
	_, err = p.Run(ctx)
	return err
}
