// Query API entrypoint: serves GET /api/data and, with --static-dir, a frontend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"financial_insights/pkg/api"
	"financial_insights/pkg/core/config"
	"financial_insights/pkg/core/logging"
	"financial_insights/pkg/core/store"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "api",
	Short:         "Serve stored financials and recommendations over HTTP",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}
		if dir, _ := cmd.Flags().GetString("static-dir"); dir != "" {
			cfg.Server.StaticDir = dir
		}
		if err := cfg.ValidateServe(); err != nil {
			return err
		}
		logger := logging.New(cfg.Logging.Level)

		ctx := cmd.Context()
		pool, err := store.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return err
		}
		defer pool.Close()

		srv := api.NewServer(api.Options{
			Companies:       store.NewCompanyRepo(pool),
			Recommendations: store.NewRecommendationRepo(pool, store.ModeAppend),
			DB:              pool,
			StaticDir:       cfg.Server.StaticDir,
			Logger:          logger,
		})
		return srv.ListenAndServe(ctx, cfg.Addr())
	},
}

func init() {
	rootCmd.Flags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.Flags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.Flags().Int("port", 0, "listen port (default from config or PORT)")
	rootCmd.Flags().String("static-dir", "", "frontend directory served at /")
}
