package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oncallops/triage/internal/config"
)

var (
	cfgPath string
	cfg     *config.Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Normalize monitoring alerts and triage them into tracked issues",
	Long: `triage ingests webhook payloads from monitoring systems (PagerDuty,
Datadog, CloudWatch, Sentry, Opsgenie, Alertmanager, or anything
JSON-shaped), normalizes them into a single alert form, deduplicates
them against previously tracked issues, and files or annotates issues
accordingly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := zerolog.InfoLevel
		if v := os.Getenv("TRIAGE_LOG_LEVEL"); v != "" {
			if parsed, perr := zerolog.ParseLevel(v); perr == nil {
				level = parsed
			}
		}
		logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "triage.yaml", "path to the configuration file")
}
