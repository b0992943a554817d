package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jasperwreed/bookstats/internal/models"
)

// frequencyTableLimit caps the markdown frequency table; the full table
// lives in the plain renderer and the library database.
const frequencyTableLimit = 200

// Markdown renders the structured report: an overview with the
// comma-grouped total, a cost table, a per-chapter words and tokens table,
// and the frequency table capped at the top 200 words.
type Markdown struct{}

func (Markdown) Ext() string {
	return ".md"
}

func (Markdown) Render(a *models.Analysis) []byte {
	var b strings.Builder

	b.WriteString("# Book Statistics\n\n")

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "Total Word Count: %s\n\n", humanize.Comma(int64(a.TotalWords)))

	b.WriteString("| Model | Cost |\n")
	b.WriteString("|-------|------|\n")
	for _, c := range a.Costs {
		fmt.Fprintf(&b, "| %s | $%.2f |\n", c.Model, c.Cost)
	}
	b.WriteByte('\n')

	b.WriteString("## Word and Token Counts per Chapter\n\n")
	b.WriteString("| Chapter | Words |")
	for _, mt := range a.Tokens {
		fmt.Fprintf(&b, " %s Tokens |", mt.Model)
	}
	b.WriteByte('\n')
	b.WriteString("|---------|-------|")
	for range a.Tokens {
		b.WriteString("--------|")
	}
	b.WriteByte('\n')
	for i, words := range a.ChapterWords {
		fmt.Fprintf(&b, "| %d | %s |", i+1, humanize.Comma(int64(words)))
		for _, mt := range a.Tokens {
			fmt.Fprintf(&b, " %s |", humanize.Comma(int64(mt.PerChapter[i])))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	b.WriteString("## Word Frequencies (First 200 Words)\n\n")
	b.WriteString("| Word | Frequency |\n")
	b.WriteString("|------|-----------|\n")
	for i, f := range a.Frequencies {
		if i >= frequencyTableLimit {
			break
		}
		fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(f.Word), f.Count)
	}

	return []byte(b.String())
}

// escapeCell keeps word tokens like "|" from breaking table rows.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
