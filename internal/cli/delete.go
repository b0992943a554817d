package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewDeleteCommand() *cobra.Command {
	var bookID string
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a book from the library",
		Long:  `Delete a book's analysis from the library database. The book file itself is untouched.`,
		Example: `  # Delete with confirmation
  bookstats delete --id 3f2a

  # Delete without confirmation prompt
  bookstats delete --id 3f2a --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bookID == "" {
				return fmt.Errorf("--id flag is required")
			}
			return runDelete(bookID, confirm)
		},
	}

	cmd.Flags().StringVar(&bookID, "id", "", "Book ID to delete")
	cmd.Flags().BoolVar(&confirm, "yes", false, "Skip confirmation prompt")
	cmd.MarkFlagRequired("id")

	return cmd
}

func runDelete(id string, skipConfirm bool) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	fullID, err := store.ResolveBookID(id)
	if err != nil {
		return err
	}

	book, err := store.GetBook(fullID)
	if err != nil {
		return err
	}

	if !skipConfirm {
		fmt.Printf("Delete '%s' (ID: %s)? [y/N]: ", book.Title, shortID(fullID))
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := store.DeleteBook(fullID); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	fmt.Printf("✓ Deleted '%s' (ID: %s)\n", book.Title, shortID(fullID))
	return nil
}
