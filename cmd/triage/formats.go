package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oncallops/triage/internal/parser"
	"github.com/oncallops/triage/internal/types"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported webhook formats",
	Long: `List every webhook format the normalizer understands, in the order
auto-detection tries them.`,
	Run: func(cmd *cobra.Command, args []string) {
		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Supported Formats ==="))
		for i, src := range parser.NewRegistry().Sources() {
			note := ""
			if src == types.SourceGeneric {
				note = gray("  (fallback, matches any JSON object)")
			}
			fmt.Printf("  %d. %s%s\n", i+1, src, note)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
