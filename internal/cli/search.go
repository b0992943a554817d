package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jasperwreed/bookstats/internal/search"
)

func NewSearchCommand() *cobra.Command {
	var limit int
	var byWord bool
	var minCount int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the library",
		Long: `Search analyzed books by title or author, or find the books that
contain a specific word. Word lookup is exact and case-sensitive.`,
		Example: `  # Find books by title or author
  bookstats search "melville"

  # Which books use the word 'whale', ranked by occurrences
  bookstats search whale --word

  # Only books that use it at least 50 times
  bookstats search whale --word --min-count 50`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(query, limit, byWord, minCount)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")
	cmd.Flags().BoolVar(&byWord, "word", false, "Treat the query as an exact word and rank books by occurrences")
	cmd.Flags().IntVar(&minCount, "min-count", 0, "Minimum occurrences to include a book (with --word)")

	return cmd
}

func runSearch(query string, limit int, byWord bool, minCount int) error {
	query, err := NewValidator().SanitizeQuery(query)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	searcher := search.NewSearcher(store)

	if byWord {
		results, err := searcher.WordWithFilters(query, limit, map[string]interface{}{
			"min_count": minCount,
		})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if len(results) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		fmt.Printf("Found %d book(s) containing '%s':\n\n", len(results), query)
		for i, result := range results {
			fmt.Printf("%d. [ID: %s] %s\n", i+1, shortID(result.BookID), result.Title)
			fmt.Printf("   %s occurrence(s)\n", humanize.Comma(int64(result.Count)))
			fmt.Println()
		}

		return nil
	}

	books, err := searcher.Books(query, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(books) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d result(s) for '%s':\n\n", len(books), query)
	for i, book := range books {
		fmt.Printf("%d. [ID: %s] %s\n", i+1, shortID(book.ID), book.Title)
		if book.Author != "" {
			fmt.Printf("   Author: %s | ", book.Author)
		} else {
			fmt.Printf("   ")
		}
		fmt.Printf("Words: %s | %s\n",
			humanize.Comma(int64(book.TotalWords)), book.AnalyzedAt.Format("2006-01-02 15:04"))
		fmt.Println()
	}

	return nil
}
