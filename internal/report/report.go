package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jasperwreed/bookstats/internal/models"
)

// Renderer turns a finished analysis into one report document. Rendering is
// pure; writing the result anywhere is the caller's business.
type Renderer interface {
	Render(a *models.Analysis) []byte
	Ext() string
}

// ForFormat resolves a report format name to its renderer.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return Markdown{}, nil
	case "text", "txt", "plain":
		return Text{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want markdown or text)", format)
	}
}

// DefaultPath derives the report path from the book's source path: the
// source extension is replaced by the _word_stats suffix plus the
// renderer's extension.
func DefaultPath(sourcePath, ext string) string {
	base := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	return base + "_word_stats" + ext
}
