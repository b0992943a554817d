package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jasperwreed/bookstats/internal/analyzer"
	"github.com/jasperwreed/bookstats/internal/report"
	"github.com/jasperwreed/bookstats/internal/watcher"
)

func NewWatchCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory and analyze new books",
		Long: `Watch a directory for incoming e-books and analyze each one as soon as
it has finished copying. Analyses go to the library; reports are not
written next to the books. Runs in the foreground until interrupted.`,
		Example: `  # Watch the default book directory
  bookstats watch

  # Watch a download folder
  bookstats watch --dir ~/Downloads`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to watch (default: ~/Books)")

	return cmd
}

func runWatch(dir string) error {
	if dir == "" && cfg != nil {
		dir = cfg.WatchDir
	}

	validator := NewValidator()
	dir, err := validator.ResolvePath(dir)
	if err != nil {
		return err
	}
	if err := validator.ValidateDirectory(dir); err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	rates, err := loadPricing("")
	if err != nil {
		return err
	}

	w, err := watcher.NewBookWatcher()
	if err != nil {
		return err
	}

	w.AddHandler(func(event watcher.Event) error {
		if event.Type != "book_found" {
			return nil
		}

		// Books already in the library were handled on an earlier run
		if existing, err := store.FindBookBySource(event.Path); err == nil && existing != nil {
			return nil
		}

		fmt.Printf("📖 %s\n", filepath.Base(event.Path))

		a, err := analyzer.New(event.Path, analyzer.Deps{Models: rates})
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", event.Path, err)
		}

		analysis, err := a.Run()
		if err != nil {
			return fmt.Errorf("failed to analyze %s: %w", event.Path, err)
		}

		if err := store.SaveAnalysis(analysis, a.Book().Chapters, report.Markdown{}.Render(analysis), "markdown"); err != nil {
			return fmt.Errorf("failed to save %s: %w", event.Path, err)
		}

		fmt.Printf("   ✓ %s words, saved to library\n", humanize.Comma(int64(analysis.TotalWords)))
		return nil
	})

	if err := w.WatchDirectory(dir); err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Printf("👀 Watching %s for new books (Ctrl-C to stop)\n", dir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nStopping...")
	return nil
}
