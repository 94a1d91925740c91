package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oncallops/triage/internal/dedup"
	"github.com/oncallops/triage/internal/tracker"
)

var (
	issuesState string
	issuesLimit int
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List tracked alert issues",
	Long:  `List issues in the tracking store carrying the configured tracking label.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := tracker.New(cfg.Tracker.Path)
		if err != nil {
			return fmt.Errorf("failed to open tracking store: %w", err)
		}
		defer store.Close()

		issues, err := store.ListIssues(context.Background(), dedup.IssueQuery{
			Label: cfg.Dedup.Label,
			State: issuesState,
			Limit: issuesLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list issues: %w", err)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Tracked Alerts ==="))
		if len(issues) == 0 {
			fmt.Printf("  %s\n\n", gray("No tracked alerts"))
			return nil
		}
		for _, issue := range issues {
			stateStr := green("open")
			if issue.State == "closed" {
				stateStr = red("closed")
			}
			fmt.Printf("  #%d  [%s]  %s  %s\n",
				issue.Number, stateStr, issue.Title,
				gray(issue.CreatedAt.Format("2006-01-02 15:04")))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	issuesCmd.Flags().StringVar(&issuesState, "state", "open", "issue state to list (open, closed, all)")
	issuesCmd.Flags().IntVar(&issuesLimit, "limit", 50, "maximum number of issues to list")
	rootCmd.AddCommand(issuesCmd)
}
