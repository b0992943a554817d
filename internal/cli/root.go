package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/bookstats/internal/config"
	"github.com/jasperwreed/bookstats/internal/storage"
)

var (
	dbPath string
	cfg    *config.Config
)

func NewRootCommand() *cobra.Command {
	cfg = config.Load()

	rootCmd := &cobra.Command{
		Use:   "bookstats [book.epub]",
		Short: "Word and token statistics for e-books",
		Long: `Bookstats - Analyze e-books for word counts, word frequencies, and the
estimated cost of feeding them to language models.

Given a book path, bookstats extracts the chapters, counts words, encodes
the text with each model's tokenizer, and writes a statistics report next
to the book.`,
		Version: "0.1.0",
		Args:    cobra.MaximumNArgs(1),
		Example: `  # Analyze a book and write book_word_stats.md next to it
  bookstats book.epub

  # Same, but with a plain text report
  bookstats analyze book.epub --format text`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runAnalyze(args[0], analyzeOptions{format: cfg.ReportFormat})
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to library database (default: ~/.bookstats/library.db)")

	rootCmd.AddCommand(
		NewAnalyzeCommand(),
		NewListCommand(),
		NewSearchCommand(),
		NewStatsCommand(),
		NewExportCommand(),
		NewBrowseCommand(),
		NewDeleteCommand(),
		NewScanCommand(),
		NewWatchCommand(),
	)

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the library database, preferring the --db flag over the
// configured path.
func openStore() (*storage.SQLiteStore, error) {
	path := dbPath
	if path == "" && cfg != nil {
		path = cfg.DatabasePath
	}
	return storage.NewSQLiteStore(path)
}
