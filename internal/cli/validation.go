package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// maxBookSize caps accepted book files. The largest EPUBs run to tens of
// megabytes; anything bigger is almost certainly not a book.
const maxBookSize = 200 * 1024 * 1024

// maxQueryLength caps search queries
const maxQueryLength = 200

// bookExtensions lists the e-book formats the analyzer can read
var bookExtensions = map[string]bool{
	".epub": true,
}

// Validator provides methods for validating CLI inputs
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateBookFile checks that a path points at an existing book file of a
// supported format
func (v *Validator) ValidateBookFile(path string) error {
	if path == "" {
		return fmt.Errorf("book path cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !bookExtensions[ext] {
		return fmt.Errorf("unsupported book format %q (supported: epub)", ext)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("book not found: %w", err)
	}

	if stat.IsDir() {
		return fmt.Errorf("path is a directory, not a book: %s", path)
	}

	if stat.Size() > maxBookSize {
		return fmt.Errorf("book is too large: %d bytes (limit %d)", stat.Size(), maxBookSize)
	}

	return nil
}

// ValidateDirectory checks if a directory path is valid
func (v *Validator) ValidateDirectory(path string) error {
	if path == "" {
		return nil // Empty path is allowed, will use default
	}

	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("invalid directory: %w", err)
	}

	if !stat.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	return nil
}

// ResolvePath resolves a path to an absolute path
func (v *Validator) ResolvePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "." {
		return os.Getwd()
	}

	if filepath.IsAbs(path) {
		return path, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return filepath.Join(cwd, path), nil
}

// SanitizeQuery strips control characters from a search query and enforces
// the length cap
func (v *Validator) SanitizeQuery(query string) (string, error) {
	var b strings.Builder
	for _, r := range query {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return "", fmt.Errorf("search query cannot be empty")
	}
	if len(cleaned) > maxQueryLength {
		return "", fmt.Errorf("search query is too long (limit %d characters)", maxQueryLength)
	}

	return cleaned, nil
}
