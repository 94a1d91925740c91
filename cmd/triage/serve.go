package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/oncallops/triage/internal/dedup"
	"github.com/oncallops/triage/internal/investigator"
	"github.com/oncallops/triage/internal/orchestrator"
	"github.com/oncallops/triage/internal/parser"
	"github.com/oncallops/triage/internal/server"
	"github.com/oncallops/triage/internal/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook ingestion server",
	Long: `Start the HTTP server that receives monitoring webhooks, normalizes
them, deduplicates against the tracking store, and files issues.
Listens until interrupted, then drains in-flight requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := tracker.New(cfg.Tracker.Path)
		if err != nil {
			return fmt.Errorf("failed to open tracking store: %w", err)
		}
		defer store.Close()

		registry := parser.NewRegistry()
		detector := dedup.NewLexicalDetector(store, cfg.DedupConfig())

		var inv orchestrator.AlertInvestigator
		if cfg.Investigation.Enabled {
			apiKey := os.Getenv("ANTHROPIC_API_KEY")
			if apiKey == "" {
				return fmt.Errorf("investigation is enabled but ANTHROPIC_API_KEY is not set")
			}
			client := anthropic.NewClient(option.WithAPIKey(apiKey))
			inv = investigator.New(&client, cfg.Investigation.Model, investigator.DefaultRetryConfig())
		}

		pipeline := orchestrator.New(registry, detector, store, inv, cfg.Dedup.Label, logger)
		srv := server.New(cfg.Server, pipeline, logger)

		logger.Info().
			Str("tracker", cfg.Tracker.Path).
			Bool("dedup", cfg.DedupConfig().Enabled).
			Bool("investigation", cfg.Investigation.Enabled).
			Msg("starting triage")
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
