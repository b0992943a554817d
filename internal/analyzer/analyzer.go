package analyzer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jasperwreed/bookstats/internal/epub"
	"github.com/jasperwreed/bookstats/internal/models"
	"github.com/jasperwreed/bookstats/internal/pricing"
	"github.com/jasperwreed/bookstats/internal/report"
	"github.com/jasperwreed/bookstats/internal/tokenizer"
)

// Fatal failure classes. Every analysis error wraps exactly one of these;
// callers branch with errors.Is. There are no retries and no partial
// results anywhere below.
var (
	ErrSourceNotFound = errors.New("book source not found")
	ErrExtraction     = errors.New("chapter extraction failed")
	ErrEncoding       = errors.New("token encoding failed")
	ErrWrite          = errors.New("report write failed")
)

// Extractor produces a book with ordered plain-text chapters from a source
// path.
type Extractor interface {
	Extract(path string) (*models.Book, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(path string) (*models.Book, error)

func (f ExtractorFunc) Extract(path string) (*models.Book, error) {
	return f(path)
}

// Deps carries the collaborators an Analyzer works against. Zero fields
// fall back to production implementations, so tests can substitute any
// subset with stubs.
type Deps struct {
	Extractor Extractor
	Words     tokenizer.WordTokenizer
	Encoders  *tokenizer.EncoderProvider
	Models    []pricing.Model
}

func (d Deps) withDefaults() Deps {
	if d.Extractor == nil {
		d.Extractor = ExtractorFunc(epub.Extract)
	}
	if d.Words == nil {
		d.Words = tokenizer.NewWords()
	}
	if d.Encoders == nil {
		d.Encoders = tokenizer.NewEncoderProvider()
	}
	if d.Models == nil {
		d.Models = pricing.Default()
	}
	return d
}

// Analyzer owns one book for one analysis run. Construction extracts and
// word-tokenizes every chapter up front; the accessors afterwards are pure
// reads. An Analyzer is used by a single caller, start to finish.
type Analyzer struct {
	book      *models.Book
	tokenized [][]string
	fullText  string
	encoders  *tokenizer.EncoderProvider
	models    []pricing.Model

	analysis *models.Analysis
}

// New extracts the book at sourcePath and tokenizes its chapters. A missing
// or unreadable source fails with ErrSourceNotFound; any other extraction
// problem fails with ErrExtraction.
func New(sourcePath string, deps Deps) (*Analyzer, error) {
	deps = deps.withDefaults()

	book, err := deps.Extractor.Extract(sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	tokenized := make([][]string, len(book.Chapters))
	texts := make([]string, len(book.Chapters))
	for i, ch := range book.Chapters {
		tokenized[i] = deps.Words.Tokenize(ch.Text)
		texts[i] = ch.Text
	}

	return &Analyzer{
		book:      book,
		tokenized: tokenized,
		fullText:  strings.Join(texts, " "),
		encoders:  deps.Encoders,
		models:    deps.Models,
	}, nil
}

// Book returns the extracted book.
func (a *Analyzer) Book() *models.Book {
	return a.book
}

// WordCounts returns the total word count and the per-chapter counts, in
// chapter order. The total is always the sum of the per-chapter counts.
func (a *Analyzer) WordCounts() (int, []int) {
	perChapter := make([]int, len(a.tokenized))
	total := 0
	for i, tokens := range a.tokenized {
		perChapter[i] = len(tokens)
		total += len(tokens)
	}
	return total, perChapter
}

// WordFrequencies counts every distinct word token across the whole book.
// Ordering is by descending count; words with equal counts keep the order
// in which they first appeared in the text.
func (a *Analyzer) WordFrequencies() []models.WordFrequency {
	index := make(map[string]int)
	var freqs []models.WordFrequency

	for _, tokens := range a.tokenized {
		for _, tok := range tokens {
			if i, ok := index[tok]; ok {
				freqs[i].Count++
				continue
			}
			index[tok] = len(freqs)
			freqs = append(freqs, models.WordFrequency{Word: tok, Count: 1})
		}
	}

	sort.SliceStable(freqs, func(i, j int) bool {
		return freqs[i].Count > freqs[j].Count
	})

	return freqs
}

// TokenCounts encodes each chapter independently with every configured
// model's encoding and returns the per-model tallies, in configuration
// order.
func (a *Analyzer) TokenCounts() ([]models.ModelTokens, error) {
	result := make([]models.ModelTokens, 0, len(a.models))

	for _, m := range a.models {
		enc, err := a.encoders.For(m.Encoding)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
		}

		mt := models.ModelTokens{
			Model:      m.Name,
			PerChapter: make([]int, len(a.book.Chapters)),
		}
		for i, ch := range a.book.Chapters {
			n := enc.Count(ch.Text)
			mt.PerChapter[i] = n
			mt.Total += n
		}
		result = append(result, mt)
	}

	return result, nil
}

// CalculateCost prices the full book text for one model. The token count is
// the model encoding applied to the raw chapter texts joined with single
// spaces, in chapter order. An empty book costs zero.
func (a *Analyzer) CalculateCost(m pricing.Model) (models.ModelCost, error) {
	enc, err := a.encoders.For(m.Encoding)
	if err != nil {
		return models.ModelCost{}, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	tokens := 0
	if a.fullText != "" {
		tokens = enc.Count(a.fullText)
	}

	return models.ModelCost{
		Model:  m.Name,
		Tokens: tokens,
		Cost:   pricing.Cost(tokens, m),
	}, nil
}

// Costs prices the book for every configured model.
func (a *Analyzer) Costs() ([]models.ModelCost, error) {
	costs := make([]models.ModelCost, 0, len(a.models))
	for _, m := range a.models {
		c, err := a.CalculateCost(m)
		if err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
	return costs, nil
}

// Run computes the complete analysis once and memoizes it. The first error
// aborts; there is no partial analysis.
func (a *Analyzer) Run() (*models.Analysis, error) {
	if a.analysis != nil {
		return a.analysis, nil
	}

	total, perChapter := a.WordCounts()

	tokens, err := a.TokenCounts()
	if err != nil {
		return nil, err
	}
	costs, err := a.Costs()
	if err != nil {
		return nil, err
	}

	a.analysis = &models.Analysis{
		BookID:       uuid.New().String(),
		Title:        a.book.Title,
		Author:       a.book.Author,
		SourcePath:   a.book.SourcePath,
		ChapterCount: len(a.book.Chapters),
		TotalWords:   total,
		ChapterWords: perChapter,
		Frequencies:  a.WordFrequencies(),
		Tokens:       tokens,
		Costs:        costs,
		AnalyzedAt:   time.Now(),
	}

	return a.analysis, nil
}

// WriteStatistics renders the full report in memory, then writes it to dest
// in one operation, so a failure leaves no partial file behind. An empty
// dest derives the default report path from the book's source path. Returns
// the path written.
func (a *Analyzer) WriteStatistics(r report.Renderer, dest string) (string, error) {
	analysis, err := a.Run()
	if err != nil {
		return "", err
	}

	if dest == "" {
		dest = report.DefaultPath(a.book.SourcePath, r.Ext())
	}

	if err := os.WriteFile(dest, r.Render(analysis), 0644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return dest, nil
}
