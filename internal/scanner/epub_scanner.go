package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type EpubScanner struct {
	roots []string
}

// NewEpubScanner scans the given directories for EPUB files. With no
// arguments it falls back to ~/Books.
func NewEpubScanner(roots ...string) *EpubScanner {
	if len(roots) == 0 {
		if home, err := GetHomeDir(); err == nil {
			roots = []string{filepath.Join(home, "Books")}
		}
	}

	return &EpubScanner{roots: roots}
}

func (s *EpubScanner) Name() string {
	return "EPUB"
}

func (s *EpubScanner) ScanPaths() []string {
	return s.roots
}

func (s *EpubScanner) ScanForBooks() ([]BookInfo, error) {
	var books []BookInfo

	for _, root := range s.roots {
		if !FileExists(root) {
			continue
		}

		files, err := FindFiles(root, "*.epub")
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", root, err)
		}

		for _, path := range files {
			// macOS copies leave AppleDouble companions next to the real file
			if strings.HasPrefix(filepath.Base(path), "._") {
				continue
			}

			info, err := os.Stat(path)
			if err != nil {
				continue
			}

			books = append(books, BookInfo{
				Path:    path,
				Format:  "epub",
				Size:    info.Size(),
				ModTime: info.ModTime().Format("2006-01-02 15:04"),
			})
		}
	}

	sort.Slice(books, func(i, j int) bool { return books[i].Path < books[j].Path })

	return books, nil
}
