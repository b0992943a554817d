package cli

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jasperwreed/bookstats/internal/analyzer"
	"github.com/jasperwreed/bookstats/internal/pricing"
	"github.com/jasperwreed/bookstats/internal/report"
)

type analyzeOptions struct {
	format   string
	output   string
	pricing  string
	noSave   bool
	noReport bool
}

func NewAnalyzeCommand() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <book.epub>",
		Short: "Analyze a book and write its statistics report",
		Long: `Analyze an e-book: count words per chapter, rank word frequencies,
encode the text with each model's tokenizer, and estimate processing costs.

The report is written next to the book and the analysis is saved to the
library database.`,
		Example: `  # Analyze with the default markdown report
  bookstats analyze book.epub

  # Plain text report at a chosen location
  bookstats analyze book.epub --format text --output /tmp/stats.txt

  # Use custom model rates
  bookstats analyze book.epub --pricing rates.json

  # Analyze without touching the library
  bookstats analyze book.epub --no-save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], opts)
		},
	}

	defaultFormat := "markdown"
	if cfg != nil {
		defaultFormat = cfg.ReportFormat
	}

	cmd.Flags().StringVar(&opts.format, "format", defaultFormat, "Report format (markdown or text)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Report path (default: next to the book)")
	cmd.Flags().StringVar(&opts.pricing, "pricing", "", "JSON file with model rates (default: built-in)")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "Skip saving the analysis to the library")
	cmd.Flags().BoolVar(&opts.noReport, "no-report", false, "Skip writing the report file")

	return cmd
}

func runAnalyze(bookPath string, opts analyzeOptions) error {
	validator := NewValidator()

	resolved, err := validator.ResolvePath(bookPath)
	if err != nil {
		return err
	}
	if err := validator.ValidateBookFile(resolved); err != nil {
		return err
	}

	rates, err := loadPricing(opts.pricing)
	if err != nil {
		return err
	}

	renderer, err := report.ForFormat(opts.format)
	if err != nil {
		return err
	}

	a, err := analyzer.New(resolved, analyzer.Deps{Models: rates})
	if err != nil {
		return err
	}

	analysis, err := a.Run()
	if err != nil {
		return err
	}

	var reportPath string
	if !opts.noReport {
		reportPath, err = a.WriteStatistics(renderer, opts.output)
		if err != nil {
			return err
		}
	}

	if !opts.noSave {
		store, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()

		if err := store.SaveAnalysis(analysis, a.Book().Chapters, renderer.Render(analysis), opts.format); err != nil {
			return fmt.Errorf("failed to save analysis: %w", err)
		}
	}

	fmt.Printf("✓ Analyzed %s\n", filepath.Base(resolved))
	fmt.Printf("  Title: %s\n", analysis.Title)
	if analysis.Author != "" {
		fmt.Printf("  Author: %s\n", analysis.Author)
	}
	fmt.Printf("  Chapters: %d\n", analysis.ChapterCount)
	fmt.Printf("  Words: %s\n", humanize.Comma(int64(analysis.TotalWords)))
	for _, c := range analysis.Costs {
		fmt.Printf("  Cost for %s: $%.6f\n", c.Model, c.Cost)
	}
	if reportPath != "" {
		fmt.Printf("  Report: %s\n", reportPath)
	}

	return nil
}

// loadPricing resolves the model rate table: an explicit flag wins, then the
// configured pricing file, then the built-in rates.
func loadPricing(path string) ([]pricing.Model, error) {
	if path == "" && cfg != nil {
		path = cfg.PricingPath
	}
	if path == "" {
		return pricing.Default(), nil
	}
	return pricing.Load(path)
}
