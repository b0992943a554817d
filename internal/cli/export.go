package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/bookstats/internal/report"
)

func NewExportCommand() *cobra.Command {
	var bookID string
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored analysis",
		Long: `Write a stored analysis to stdout. JSON exports the raw analysis;
markdown and text re-render the statistics report.`,
		Example: `  # Export an analysis as JSON (ID prefixes work)
  bookstats export --id 3f2a

  # Regenerate the markdown report for a stored book
  bookstats export --id 3f2a --format markdown > stats.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bookID == "" {
				return fmt.Errorf("--id flag is required")
			}
			return runExport(bookID, format)
		},
	}

	cmd.Flags().StringVar(&bookID, "id", "", "Book ID to export")
	cmd.Flags().StringVar(&format, "format", "json", "Export format (json, markdown, or text)")
	cmd.MarkFlagRequired("id")

	return cmd
}

func runExport(id, format string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	fullID, err := store.ResolveBookID(id)
	if err != nil {
		return err
	}

	analysis, err := store.GetAnalysis(fullID)
	if err != nil {
		return fmt.Errorf("failed to get analysis: %w", err)
	}

	if format == "json" {
		output, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal analysis: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	renderer, err := report.ForFormat(format)
	if err != nil {
		return err
	}

	os.Stdout.Write(renderer.Render(analysis))
	return nil
}
