package analyzer

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jasperwreed/bookstats/internal/models"
	"github.com/jasperwreed/bookstats/internal/pricing"
	"github.com/jasperwreed/bookstats/internal/report"
	"github.com/jasperwreed/bookstats/internal/tokenizer"
)

const costEpsilon = 1e-12

// wordCountEncoder counts a fixed number of tokens per space-separated
// word, which keeps expected token totals easy to compute by hand.
type wordCountEncoder struct {
	perWord int
}

func (e *wordCountEncoder) Name() string { return "stub" }

func (e *wordCountEncoder) Count(text string) int {
	return len(strings.Fields(text)) * e.perWord
}

func (e *wordCountEncoder) Encode(text string) []int {
	ids := make([]int, e.Count(text))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func stubDeps(book *models.Book) Deps {
	return Deps{
		Extractor: ExtractorFunc(func(path string) (*models.Book, error) {
			return book, nil
		}),
		Words: tokenizer.NewWords(),
		Encoders: tokenizer.NewEncoderProviderWith(func(encoding string) (tokenizer.Encoder, error) {
			return &wordCountEncoder{perWord: 125}, nil
		}),
		Models: []pricing.Model{
			{Name: "model-a", Encoding: "stub", PricePer1K: 0.01},
			{Name: "model-b", Encoding: "stub", PricePer1K: 0.02},
		},
	}
}

func twoChapterBook() *models.Book {
	return &models.Book{
		Title:      "Little Book",
		SourcePath: "/books/little.epub",
		Chapters: []models.Chapter{
			{Seq: 1, Text: "the cat sat"},
			{Seq: 2, Text: "the dog ran the cat"},
		},
	}
}

func TestAnalyzer_WordCounts(t *testing.T) {
	a, err := New("/books/little.epub", stubDeps(twoChapterBook()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	total, perChapter := a.WordCounts()
	if total != 8 {
		t.Errorf("total = %d, want 8", total)
	}
	if !reflect.DeepEqual(perChapter, []int{3, 5}) {
		t.Errorf("perChapter = %v, want [3 5]", perChapter)
	}

	sum := 0
	for _, c := range perChapter {
		sum += c
	}
	if sum != total {
		t.Errorf("sum(perChapter) = %d, want total %d", sum, total)
	}
	if len(perChapter) != len(a.Book().Chapters) {
		t.Errorf("len(perChapter) = %d, want chapter count %d", len(perChapter), len(a.Book().Chapters))
	}
}

func TestAnalyzer_WordFrequencies(t *testing.T) {
	a, err := New("/books/little.epub", stubDeps(twoChapterBook()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := a.WordFrequencies()
	want := []models.WordFrequency{
		{Word: "the", Count: 3},
		{Word: "cat", Count: 2},
		{Word: "sat", Count: 1},
		{Word: "dog", Count: 1},
		{Word: "ran", Count: 1},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("WordFrequencies() = %v, want %v", got, want)
	}
}

func TestAnalyzer_WordFrequenciesTieOrder(t *testing.T) {
	book := &models.Book{
		SourcePath: "/books/ties.epub",
		Chapters: []models.Chapter{
			{Seq: 1, Text: "zebra apple zebra apple mango"},
		},
	}
	a, err := New(book.SourcePath, stubDeps(book))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := a.WordFrequencies()
	want := []models.WordFrequency{
		{Word: "zebra", Count: 2},
		{Word: "apple", Count: 2},
		{Word: "mango", Count: 1},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("WordFrequencies() = %v, want first-encounter tie order %v", got, want)
	}
}

func TestAnalyzer_FrequencySumInvariant(t *testing.T) {
	book := &models.Book{
		SourcePath: "/books/punct.epub",
		Chapters: []models.Chapter{
			{Seq: 1, Text: `"Stop!" cried the well-known cat.`},
			{Seq: 2, Text: "Don't stop; the cat ran..."},
			{Seq: 3, Text: ""},
		},
	}
	a, err := New(book.SourcePath, stubDeps(book))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	total, _ := a.WordCounts()
	sum := 0
	for _, f := range a.WordFrequencies() {
		sum += f.Count
	}

	if sum != total {
		t.Errorf("sum of frequencies = %d, want total word count %d", sum, total)
	}
}

func TestAnalyzer_TokenCounts(t *testing.T) {
	a, err := New("/books/little.epub", stubDeps(twoChapterBook()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := a.TokenCounts()
	if err != nil {
		t.Fatalf("TokenCounts() error = %v", err)
	}

	want := []models.ModelTokens{
		{Model: "model-a", Total: 1000, PerChapter: []int{375, 625}},
		{Model: "model-b", Total: 1000, PerChapter: []int{375, 625}},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenCounts() = %v, want %v", got, want)
	}
}

func TestAnalyzer_CalculateCost(t *testing.T) {
	deps := stubDeps(twoChapterBook())
	a, err := New("/books/little.epub", deps)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Full text is 8 words, 125 stub tokens each: exactly 1000 tokens.
	tests := []struct {
		model     pricing.Model
		wantCost  float64
		wantToken int
	}{
		{model: deps.Models[0], wantCost: 0.01, wantToken: 1000},
		{model: deps.Models[1], wantCost: 0.02, wantToken: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.model.Name, func(t *testing.T) {
			got, err := a.CalculateCost(tt.model)
			if err != nil {
				t.Fatalf("CalculateCost() error = %v", err)
			}
			if got.Tokens != tt.wantToken {
				t.Errorf("Tokens = %d, want %d", got.Tokens, tt.wantToken)
			}
			if math.Abs(got.Cost-tt.wantCost) > costEpsilon {
				t.Errorf("Cost = %v, want %v", got.Cost, tt.wantCost)
			}
		})
	}
}

func TestAnalyzer_Run(t *testing.T) {
	a, err := New("/books/little.epub", stubDeps(twoChapterBook()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	analysis, err := a.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if analysis.BookID == "" {
		t.Error("BookID is empty")
	}
	if analysis.Title != "Little Book" {
		t.Errorf("Title = %q, want %q", analysis.Title, "Little Book")
	}
	if analysis.ChapterCount != 2 || analysis.TotalWords != 8 {
		t.Errorf("ChapterCount, TotalWords = %d, %d, want 2, 8", analysis.ChapterCount, analysis.TotalWords)
	}
	if analysis.AnalyzedAt.IsZero() {
		t.Error("AnalyzedAt is zero")
	}
	if len(analysis.Costs) != 2 {
		t.Fatalf("got %d costs, want 2", len(analysis.Costs))
	}

	again, err := a.Run()
	if err != nil {
		t.Fatalf("Run() second call error = %v", err)
	}
	if again != analysis {
		t.Error("Run() recomputed instead of returning the memoized analysis")
	}
}

func TestAnalyzer_EmptyBook(t *testing.T) {
	book := &models.Book{
		Title:      "Empty",
		SourcePath: filepath.Join(t.TempDir(), "empty.epub"),
	}
	a, err := New(book.SourcePath, stubDeps(book))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	total, perChapter := a.WordCounts()
	if total != 0 || len(perChapter) != 0 {
		t.Errorf("WordCounts() = %d, %v, want 0 and empty", total, perChapter)
	}
	if freqs := a.WordFrequencies(); len(freqs) != 0 {
		t.Errorf("WordFrequencies() = %v, want empty", freqs)
	}

	costs, err := a.Costs()
	if err != nil {
		t.Fatalf("Costs() error = %v", err)
	}
	for _, c := range costs {
		if c.Cost != 0 || c.Tokens != 0 {
			t.Errorf("cost for %s = %v (%d tokens), want zero", c.Model, c.Cost, c.Tokens)
		}
	}

	// A report is still produced for an empty book.
	dest, err := a.WriteStatistics(report.Text{}, "")
	if err != nil {
		t.Fatalf("WriteStatistics() error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.HasPrefix(string(data), "Total Word Count: 0\n") {
		t.Errorf("report starts %q, want zero total", string(data[:min(len(data), 40)]))
	}
}

func TestNew_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		extractErr error
		wantIs     error
		wantNotIs  error
	}{
		{
			name:       "missing source",
			extractErr: fmt.Errorf("failed to open book: %w", fs.ErrNotExist),
			wantIs:     ErrSourceNotFound,
			wantNotIs:  ErrExtraction,
		},
		{
			name:       "malformed source",
			extractErr: errors.New("failed to parse content.opf"),
			wantIs:     ErrExtraction,
			wantNotIs:  ErrSourceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := stubDeps(nil)
			deps.Extractor = ExtractorFunc(func(path string) (*models.Book, error) {
				return nil, tt.extractErr
			})

			_, err := New("/books/broken.epub", deps)
			if err == nil {
				t.Fatal("New() error = nil, want error")
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("New() error = %v, want %v in chain", err, tt.wantIs)
			}
			if errors.Is(err, tt.wantNotIs) {
				t.Errorf("New() error = %v, must not match %v", err, tt.wantNotIs)
			}
		})
	}
}

func TestAnalyzer_EncodingFailure(t *testing.T) {
	deps := stubDeps(twoChapterBook())
	deps.Encoders = tokenizer.NewEncoderProviderWith(func(encoding string) (tokenizer.Encoder, error) {
		return nil, fmt.Errorf("failed to load encoding %q", encoding)
	})

	a, err := New("/books/little.epub", deps)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := a.TokenCounts(); !errors.Is(err, ErrEncoding) {
		t.Errorf("TokenCounts() error = %v, want ErrEncoding", err)
	}
	if _, err := a.Costs(); !errors.Is(err, ErrEncoding) {
		t.Errorf("Costs() error = %v, want ErrEncoding", err)
	}
	if _, err := a.Run(); !errors.Is(err, ErrEncoding) {
		t.Errorf("Run() error = %v, want ErrEncoding", err)
	}
}

func TestAnalyzer_WriteStatistics(t *testing.T) {
	tempDir := t.TempDir()

	book := twoChapterBook()
	book.SourcePath = filepath.Join(tempDir, "little.epub")

	a, err := New(book.SourcePath, stubDeps(book))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	t.Run("default path", func(t *testing.T) {
		dest, err := a.WriteStatistics(report.Text{}, "")
		if err != nil {
			t.Fatalf("WriteStatistics() error = %v", err)
		}

		want := filepath.Join(tempDir, "little_word_stats.txt")
		if dest != want {
			t.Errorf("dest = %q, want %q", dest, want)
		}

		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("reading report: %v", err)
		}
		if !strings.HasPrefix(string(data), "Total Word Count: 8\n") {
			t.Errorf("report does not start with the total, got %q", string(data[:min(len(data), 40)]))
		}
	})

	t.Run("explicit destination", func(t *testing.T) {
		dest := filepath.Join(tempDir, "custom.md")
		got, err := a.WriteStatistics(report.Markdown{}, dest)
		if err != nil {
			t.Fatalf("WriteStatistics() error = %v", err)
		}
		if got != dest {
			t.Errorf("dest = %q, want %q", got, dest)
		}
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("report not written: %v", err)
		}
	})

	t.Run("unwritable destination", func(t *testing.T) {
		dest := filepath.Join(tempDir, "no-such-dir", "report.txt")
		_, err := a.WriteStatistics(report.Text{}, dest)
		if !errors.Is(err, ErrWrite) {
			t.Fatalf("WriteStatistics() error = %v, want ErrWrite", err)
		}
		if _, statErr := os.Stat(dest); !errors.Is(statErr, fs.ErrNotExist) {
			t.Error("failed write left a file behind")
		}
	})
}
