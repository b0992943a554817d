package search

import (
	"strings"

	"github.com/jasperwreed/bookstats/internal/models"
	"github.com/jasperwreed/bookstats/internal/storage"
)

type Searcher struct {
	store *storage.SQLiteStore
}

func NewSearcher(store *storage.SQLiteStore) *Searcher {
	return &Searcher{store: store}
}

// Books matches stored books by title or author substring.
func (s *Searcher) Books(query string, limit int) ([]models.BookSummary, error) {
	return s.store.SearchBooks(query, limit)
}

// Word returns the books containing an exact word token, most occurrences
// first. Matching is case-sensitive because frequencies preserve the case
// found in the text.
func (s *Searcher) Word(word string, limit int) ([]models.WordOccurrence, error) {
	return s.store.WordOccurrences(word, limit)
}

func (s *Searcher) WordWithFilters(word string, limit int, filters map[string]interface{}) ([]models.WordOccurrence, error) {
	results, err := s.store.WordOccurrences(word, limit)
	if err != nil {
		return nil, err
	}

	if minCount, ok := filters["min_count"].(int); ok && minCount > 0 {
		filtered := []models.WordOccurrence{}
		for _, r := range results {
			if r.Count >= minCount {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if title, ok := filters["title"].(string); ok && title != "" {
		needle := strings.ToLower(title)
		filtered := []models.WordOccurrence{}
		for _, r := range results {
			if strings.Contains(strings.ToLower(r.Title), needle) {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	return results, nil
}
