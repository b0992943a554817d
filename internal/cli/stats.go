package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		Long:  `Display totals across all analyzed books, including estimated model costs.`,
		RunE:  runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	stats, err := store.GetStats()
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	fmt.Println("Library Statistics")
	fmt.Println("==================")
	fmt.Printf("\nTotal Books: %d\n", stats.TotalBooks)
	fmt.Printf("Total Chapters: %d\n", stats.TotalChapters)
	fmt.Printf("Total Words: %s\n", humanize.Comma(int64(stats.TotalWords)))
	fmt.Printf("Estimated Cost: $%.4f\n", stats.EstimatedCost)

	if len(stats.ModelTotals) > 0 {
		fmt.Println("\nCost by Model:")
		for _, m := range stats.ModelTotals {
			fmt.Printf("  %s: %s tokens, $%.4f\n", m.Model, humanize.Comma(int64(m.Tokens)), m.Cost)
		}
	}

	if len(stats.TopWords) > 0 {
		fmt.Println("\nMost Common Words:")
		for _, w := range stats.TopWords {
			fmt.Printf("  %s: %s\n", w.Word, humanize.Comma(int64(w.Count)))
		}
	}

	return nil
}
