package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/jasperwreed/bookstats/internal/models"
)

func scenarioAnalysis() *models.Analysis {
	return &models.Analysis{
		Title:        "Little Book",
		ChapterCount: 2,
		TotalWords:   8,
		ChapterWords: []int{3, 5},
		Frequencies: []models.WordFrequency{
			{Word: "the", Count: 3},
			{Word: "cat", Count: 2},
			{Word: "sat", Count: 1},
			{Word: "dog", Count: 1},
			{Word: "ran", Count: 1},
		},
		Tokens: []models.ModelTokens{
			{Model: "gpt-4o-mini", Total: 10, PerChapter: []int{4, 6}},
			{Model: "gpt-4o", Total: 10, PerChapter: []int{4, 6}},
		},
		Costs: []models.ModelCost{
			{Model: "gpt-4o-mini", Tokens: 1000, Cost: 0.01},
			{Model: "gpt-4o", Tokens: 1000, Cost: 0.02},
		},
	}
}

func TestText_Render(t *testing.T) {
	got := string(Text{}.Render(scenarioAnalysis()))

	want := `Total Word Count: 8

Chapter 1 Word Count: 3
Chapter 2 Word Count: 5

Cost for gpt-4o-mini: 0.010000
Cost for gpt-4o: 0.020000

the: 3
cat: 2
sat: 1
dog: 1
ran: 1
`

	if got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestText_RenderEmptyBook(t *testing.T) {
	a := &models.Analysis{
		Costs: []models.ModelCost{
			{Model: "gpt-4o-mini", Tokens: 0, Cost: 0},
		},
	}
	got := string(Text{}.Render(a))

	want := `Total Word Count: 0


Cost for gpt-4o-mini: 0.000000

`

	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestMarkdown_Render(t *testing.T) {
	got := string(Markdown{}.Render(scenarioAnalysis()))

	wantLines := []string{
		"# Book Statistics",
		"## Overview",
		"Total Word Count: 8",
		"| Model | Cost |",
		"| gpt-4o-mini | $0.01 |",
		"| gpt-4o | $0.02 |",
		"## Word and Token Counts per Chapter",
		"| Chapter | Words | gpt-4o-mini Tokens | gpt-4o Tokens |",
		"| 1 | 3 | 4 | 4 |",
		"| 2 | 5 | 6 | 6 |",
		"## Word Frequencies (First 200 Words)",
		"| Word | Frequency |",
		"| the | 3 |",
		"| cat | 2 |",
	}

	for _, line := range wantLines {
		if !strings.Contains(got, line+"\n") {
			t.Errorf("Render() missing line %q in:\n%s", line, got)
		}
	}
}

func TestMarkdown_CommaGrouping(t *testing.T) {
	a := &models.Analysis{
		TotalWords:   1234567,
		ChapterWords: []int{1234567},
		Tokens: []models.ModelTokens{
			{Model: "gpt-4o", Total: 1650000, PerChapter: []int{1650000}},
		},
		Costs: []models.ModelCost{
			{Model: "gpt-4o", Tokens: 1650000, Cost: 4.125},
		},
	}
	got := string(Markdown{}.Render(a))

	if !strings.Contains(got, "Total Word Count: 1,234,567") {
		t.Errorf("Render() total not comma-grouped:\n%s", got)
	}
	if !strings.Contains(got, "| 1 | 1,234,567 | 1,650,000 |") {
		t.Errorf("Render() chapter row not comma-grouped:\n%s", got)
	}
	if !strings.Contains(got, "| gpt-4o | $4.13 |") {
		t.Errorf("Render() cost not rounded to cents:\n%s", got)
	}
}

// The rendered overview total must re-parse to the exact computed value.
func TestMarkdown_TotalRoundTrip(t *testing.T) {
	totals := []int{0, 8, 999, 1000, 1234567, 987654321}
	re := regexp.MustCompile(`Total Word Count: ([0-9,]+)`)

	for _, total := range totals {
		a := &models.Analysis{TotalWords: total}
		rendered := string(Markdown{}.Render(a))

		match := re.FindStringSubmatch(rendered)
		if match == nil {
			t.Fatalf("total %d: overview line not found in:\n%s", total, rendered)
		}

		parsed, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
		if err != nil {
			t.Fatalf("total %d: re-parse error = %v", total, err)
		}
		if parsed != total {
			t.Errorf("round trip = %d, want %d", parsed, total)
		}
	}
}

func TestMarkdown_FrequencyTableCap(t *testing.T) {
	a := &models.Analysis{}
	for i := 0; i < 250; i++ {
		a.Frequencies = append(a.Frequencies, models.WordFrequency{
			Word:  fmt.Sprintf("word%03d", i),
			Count: 250 - i,
		})
	}
	got := string(Markdown{}.Render(a))

	rows := 0
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, "| word") {
			rows++
		}
	}
	if rows != frequencyTableLimit {
		t.Errorf("frequency table has %d rows, want %d", rows, frequencyTableLimit)
	}
	if !strings.Contains(got, "| word199 | 51 |") {
		t.Error("frequency table missing 200th word")
	}
	if strings.Contains(got, "| word200 |") {
		t.Error("frequency table includes word beyond the cap")
	}
}

func TestDefaultPath(t *testing.T) {
	tests := []struct {
		name   string
		source string
		ext    string
		want   string
	}{
		{
			name:   "epub to text",
			source: "/books/moby-dick.epub",
			ext:    ".txt",
			want:   "/books/moby-dick_word_stats.txt",
		},
		{
			name:   "epub to markdown",
			source: "/books/moby-dick.epub",
			ext:    ".md",
			want:   "/books/moby-dick_word_stats.md",
		},
		{
			name:   "no extension",
			source: "/books/notes",
			ext:    ".txt",
			want:   "/books/notes_word_stats.txt",
		},
		{
			name:   "dotted directory",
			source: "/b.ooks/novel.epub",
			ext:    ".md",
			want:   "/b.ooks/novel_word_stats.md",
		},
		{
			name:   "relative path",
			source: "novel.epub",
			ext:    ".md",
			want:   "novel_word_stats.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultPath(tt.source, tt.ext); got != tt.want {
				t.Errorf("DefaultPath(%q, %q) = %q, want %q", tt.source, tt.ext, got, tt.want)
			}
		})
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{format: "markdown", wantExt: ".md"},
		{format: "md", wantExt: ".md"},
		{format: "Markdown", wantExt: ".md"},
		{format: "text", wantExt: ".txt"},
		{format: "txt", wantExt: ".txt"},
		{format: "plain", wantExt: ".txt"},
		{format: "pdf", wantErr: true},
		{format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r, err := ForFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err == nil && r.Ext() != tt.wantExt {
				t.Errorf("ForFormat(%q).Ext() = %q, want %q", tt.format, r.Ext(), tt.wantExt)
			}
		})
	}
}
