package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List analyzed books",
		Long:  `List the books in the library, most recently analyzed first.`,
		Example: `  # List recently analyzed books
  bookstats list

  # Page through a large library
  bookstats list --limit 50 --offset 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(limit, offset)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of books to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of books to skip")

	return cmd
}

func runList(limit, offset int) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	books, err := store.ListBooks(limit, offset)
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	if len(books) == 0 {
		fmt.Println("No books analyzed yet.")
		return nil
	}

	fmt.Printf("Analyzed books:\n\n")

	for _, book := range books {
		fmt.Printf("[ID: %s] %s\n", shortID(book.ID), book.Title)
		if book.Author != "" {
			fmt.Printf("  Author: %s | ", book.Author)
		} else {
			fmt.Printf("  ")
		}
		fmt.Printf("Chapters: %d | Words: %s | Est. cost: $%.4f\n",
			book.ChapterCount, humanize.Comma(int64(book.TotalWords)), book.TotalCost)
		fmt.Printf("  Analyzed: %s\n", book.AnalyzedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	return nil
}

// shortID abbreviates a book ID for display. Every command that takes an ID
// accepts such a prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
