package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/bookstats/internal/analyzer"
	"github.com/jasperwreed/bookstats/internal/report"
	"github.com/jasperwreed/bookstats/internal/scanner"
)

func NewScanCommand() *cobra.Command {
	var dirs []string
	var verbose bool
	var dryRun bool
	var force bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan directories for e-books and analyze them",
		Long: `Discover e-books on disk and add their statistics to the library.
Currently supports: EPUB

The scan command will:
1. Search the given directories for .epub files (default: ~/Books)
2. Analyze every book that is not in the library yet
3. Store each analysis with its rendered report

Reports are kept in the library; scan never writes files next to the books.`,
		Example: `  # Scan the default book directory
  bookstats scan

  # Scan specific directories
  bookstats scan --dir ~/Books --dir ~/Downloads

  # Dry run to see what would be analyzed
  bookstats scan --dry-run

  # Re-analyze books already in the library
  bookstats scan --force --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(dirs, verbose, dryRun, force)
		},
	}

	cmd.Flags().StringSliceVar(&dirs, "dir", nil, "Directory to scan (repeatable; default: ~/Books)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed progress")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be analyzed without analyzing")
	cmd.Flags().BoolVar(&force, "force", false, "Re-analyze books already in the library")

	return cmd
}

func runScan(dirs []string, verbose, dryRun, force bool) error {
	validator := NewValidator()
	resolved := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		path, err := validator.ResolvePath(dir)
		if err != nil {
			return err
		}
		if err := validator.ValidateDirectory(path); err != nil {
			return err
		}
		resolved = append(resolved, path)
	}

	fmt.Println("🔍 Scanning for e-books...")
	fmt.Println()

	// Initialize scanners (extensible design for future formats)
	scanners := []scanner.Scanner{
		scanner.NewEpubScanner(resolved...),
		// Future: scanner.NewMobiScanner(),
		// Future: scanner.NewPDFScanner(),
	}

	totalFound := 0
	totalAnalyzed := 0
	totalSkipped := 0
	totalFailed := 0

	for _, s := range scanners {
		if verbose {
			fmt.Printf("Scanning for %s books...\n", s.Name())
		}

		books, err := s.ScanForBooks()
		if err != nil {
			if verbose {
				fmt.Printf("  ⚠️  Error scanning %s: %v\n", s.Name(), err)
			}
			continue
		}

		if len(books) == 0 {
			if verbose {
				fmt.Printf("  No %s books found\n", s.Name())
			}
			continue
		}

		fmt.Printf("📁 Found %d %s book(s)\n", len(books), s.Name())
		totalFound += len(books)

		if dryRun {
			for _, book := range books {
				fmt.Printf("  • %s\n", book.Path)
				if verbose {
					fmt.Printf("    Size: %d bytes, Modified: %s\n", book.Size, book.ModTime)
				}
			}
			continue
		}

		analyzed, skipped, failed := analyzeBooks(books, verbose, force)
		totalAnalyzed += analyzed
		totalSkipped += skipped
		totalFailed += failed
	}

	// Summary
	fmt.Println()
	fmt.Println("═══════════════════════════════════")
	fmt.Printf("📊 Scan Complete\n")
	fmt.Printf("   Total books found: %d\n", totalFound)

	if !dryRun {
		fmt.Printf("   Analyzed: %d\n", totalAnalyzed)
		if totalSkipped > 0 {
			fmt.Printf("   Already in library: %d\n", totalSkipped)
		}
		if totalFailed > 0 {
			fmt.Printf("   Failed: %d\n", totalFailed)
		}
		fmt.Println()
		fmt.Println("✨ You can now use:")
		fmt.Println("   bookstats browse         # Browse the library")
		fmt.Println("   bookstats search <query> # Search analyzed books")
		fmt.Println("   bookstats stats          # View library statistics")
	} else {
		fmt.Println("\n(Dry run - no changes made)")
		fmt.Printf("Would analyze %d book(s)\n", totalFound)
	}

	return nil
}

func analyzeBooks(books []scanner.BookInfo, verbose, force bool) (analyzed, skipped, failed int) {
	store, err := openStore()
	if err != nil {
		fmt.Printf("  ❌ Failed to open database: %v\n", err)
		return 0, 0, len(books)
	}
	defer store.Close()

	rates, err := loadPricing("")
	if err != nil {
		fmt.Printf("  ❌ Failed to load model rates: %v\n", err)
		return 0, 0, len(books)
	}

	renderer := report.Markdown{}

	for i, book := range books {
		if verbose {
			fmt.Printf("  [%d/%d] Analyzing %s...\n", i+1, len(books), filepath.Base(book.Path))
		}

		// Skip books the library already has, unless forced
		if !force {
			existing, _ := store.FindBookBySource(book.Path)
			if existing != nil {
				skipped++
				if verbose {
					fmt.Printf("    ⏭️  Already analyzed\n")
				}
				continue
			}
		}

		a, err := analyzer.New(book.Path, analyzer.Deps{Models: rates})
		if err != nil {
			if verbose {
				fmt.Printf("    ⚠️  Failed to read: %v\n", err)
			}
			failed++
			continue
		}

		analysis, err := a.Run()
		if err != nil {
			if verbose {
				fmt.Printf("    ⚠️  Failed to analyze: %v\n", err)
			}
			failed++
			continue
		}

		if err := store.SaveAnalysis(analysis, a.Book().Chapters, renderer.Render(analysis), "markdown"); err != nil {
			if verbose {
				fmt.Printf("    ❌ Failed to save: %v\n", err)
			}
			failed++
			continue
		}

		analyzed++
		if !verbose && analyzed%10 == 0 {
			fmt.Printf("  Analyzed %d/%d...\n", analyzed, len(books))
		}
	}

	return analyzed, skipped, failed
}
