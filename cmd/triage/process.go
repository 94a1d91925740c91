package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oncallops/triage/internal/dedup"
	"github.com/oncallops/triage/internal/orchestrator"
	"github.com/oncallops/triage/internal/parser"
	"github.com/oncallops/triage/internal/tracker"
)

var processFormat string

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Run a single alert payload through the pipeline",
	Long: `Read one webhook payload from the given file (or stdin when no file
is given), normalize it, check it against the tracking store, and file
or annotate an issue. Useful for replaying captured webhooks and for
testing format detection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}
		} else {
			raw, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
		}

		store, err := tracker.New(cfg.Tracker.Path)
		if err != nil {
			return fmt.Errorf("failed to open tracking store: %w", err)
		}
		defer store.Close()

		registry := parser.NewRegistry()
		detector := dedup.NewLexicalDetector(store, cfg.DedupConfig())
		pipeline := orchestrator.New(registry, detector, store, nil, cfg.Dedup.Label, logger)

		outcome, err := pipeline.Process(context.Background(), raw, processFormat)
		if err != nil {
			return err
		}

		printOutcome(outcome)
		return nil
	},
}

func printOutcome(o *orchestrator.Outcome) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n\n", cyan("=== Alert Triage Result ==="))
	fmt.Printf("%s %s\n", yellow("Source:"), o.Alert.Source)
	fmt.Printf("%s %s\n", yellow("ID:"), o.Alert.ID)
	fmt.Printf("%s %s\n", yellow("Title:"), o.Alert.Title)
	fmt.Printf("%s %s\n", yellow("Severity:"), o.Alert.Severity)
	if o.Alert.Service != "" {
		fmt.Printf("%s %s\n", yellow("Service:"), o.Alert.Service)
	}
	fmt.Println()

	switch o.Action {
	case orchestrator.ActionCreated:
		fmt.Printf("%s filed issue #%d\n", green("✓"), o.IssueNumber)
	case orchestrator.ActionDuplicate:
		fmt.Printf("%s duplicate of issue #%d (similarity %.2f)\n",
			yellow("≈"), o.Match.Number, o.Match.Similarity)
	case orchestrator.ActionSkipped:
		fmt.Printf("%s already processed, issue untouched\n", gray("○"))
	}
}

func init() {
	processCmd.Flags().StringVar(&processFormat, "format", parser.FormatAuto,
		"payload format (auto, pagerduty, datadog, cloudwatch, sentry, opsgenie, alertmanager, generic)")
	rootCmd.AddCommand(processCmd)
}
