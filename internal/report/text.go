package report

import (
	"fmt"
	"strings"

	"github.com/jasperwreed/bookstats/internal/models"
)

// Text renders the plain report: total, per-chapter counts, per-model
// costs to six decimals, then every distinct word with its frequency in
// descending order. Blocks are separated by blank lines.
type Text struct{}

func (Text) Ext() string {
	return ".txt"
}

func (Text) Render(a *models.Analysis) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "Total Word Count: %d\n", a.TotalWords)
	b.WriteByte('\n')

	for i, count := range a.ChapterWords {
		fmt.Fprintf(&b, "Chapter %d Word Count: %d\n", i+1, count)
	}
	b.WriteByte('\n')

	for _, c := range a.Costs {
		fmt.Fprintf(&b, "Cost for %s: %.6f\n", c.Model, c.Cost)
	}
	b.WriteByte('\n')

	for _, f := range a.Frequencies {
		fmt.Fprintf(&b, "%s: %d\n", f.Word, f.Count)
	}

	return []byte(b.String())
}
