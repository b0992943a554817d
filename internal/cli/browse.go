package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/bookstats/internal/tui"
)

func NewBrowseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the library in a TUI",
		Long:  `Open an interactive terminal UI to browse analyzed books and read their reports.`,
		Example: `  # Browse the default library
  bookstats browse

  # Browse a specific database
  bookstats browse --db custom.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse()
		},
	}

	return cmd
}

func runBrowse() error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	browser := tui.NewBrowser(store)
	return browser.Run()
}
