package scanner

import (
	"fmt"
	"os"
	"path/filepath"
)

// Scanner discovers e-book files of a single format
type Scanner interface {
	Name() string
	ScanPaths() []string
	ScanForBooks() ([]BookInfo, error)
}

type BookInfo struct {
	Path    string
	Format  string
	Size    int64
	ModTime string
}

type ScanResult struct {
	Format     string
	BooksFound int
	Analyzed   int
	Skipped    int
	Failed     int
	Errors     []string
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return home, nil
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func FindFiles(root string, pattern string) ([]string, error) {
	var files []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if !info.IsDir() && matchesPattern(path, pattern) {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

func matchesPattern(path, pattern string) bool {
	matched, _ := filepath.Match(pattern, filepath.Base(path))
	return matched
}
