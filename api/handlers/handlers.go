package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jasperwreed/bookstats/internal/analyzer"
	"github.com/jasperwreed/bookstats/internal/models"
	"github.com/jasperwreed/bookstats/internal/pricing"
	"github.com/jasperwreed/bookstats/internal/report"
	"github.com/jasperwreed/bookstats/internal/storage"
)

type Handlers struct {
	store *storage.SQLiteStore
	rates []pricing.Model
}

func NewHandlers(store *storage.SQLiteStore, rates []pricing.Model) *Handlers {
	return &Handlers{store: store, rates: rates}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *Handlers) ListBooks(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	limit := 50
	if l := queryParams.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	offset := 0
	if o := queryParams.Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	books, err := h.store.ListBooks(limit, offset)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list books")
		return
	}
	if books == nil {
		books = []models.BookSummary{}
	}

	response := map[string]interface{}{
		"books":  books,
		"limit":  limit,
		"offset": offset,
		"total":  len(books),
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.ResolveBookID(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Book not found")
		return
	}

	book, err := h.store.GetBook(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get book")
		return
	}

	respondWithJSON(w, http.StatusOK, book)
}

func (h *Handlers) AnalyzeBook(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Path   string `json:"path"`
		Format string `json:"format"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.Path == "" {
		respondWithError(w, http.StatusBadRequest, "Book path is required")
		return
	}

	format := payload.Format
	if format == "" {
		format = "markdown"
	}
	renderer, err := report.ForFormat(format)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown report format")
		return
	}

	// The path names a book on the server's own filesystem
	a, err := analyzer.New(payload.Path, analyzer.Deps{Models: h.rates})
	if err != nil {
		if errors.Is(err, analyzer.ErrSourceNotFound) {
			respondWithError(w, http.StatusNotFound, "Book file not found")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Failed to read book")
		return
	}

	analysis, err := a.Run()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	if err := h.store.SaveAnalysis(analysis, a.Book().Chapters, renderer.Render(analysis), format); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save analysis")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"book_id":       analysis.BookID,
		"title":         analysis.Title,
		"author":        analysis.Author,
		"chapter_count": analysis.ChapterCount,
		"total_words":   analysis.TotalWords,
		"costs":         analysis.Costs,
		"analyzed_at":   analysis.AnalyzedAt.Format(time.RFC3339),
	})
}

func (h *Handlers) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.ResolveBookID(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Book not found")
		return
	}

	if err := h.store.DeleteBook(id); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to delete book")
		return
	}

	response := map[string]string{
		"message": "Book deleted successfully",
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	searchQuery := r.URL.Query().Get("q")
	if searchQuery == "" {
		respondWithError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := h.store.SearchBooks(searchQuery, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	if results == nil {
		results = []models.BookSummary{}
	}

	response := map[string]interface{}{
		"query":   searchQuery,
		"results": results,
		"count":   len(results),
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *Handlers) WordOccurrences(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	occurrences, err := h.store.WordOccurrences(word, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Word lookup failed")
		return
	}
	if occurrences == nil {
		occurrences = []models.WordOccurrence{}
	}

	response := map[string]interface{}{
		"word":  word,
		"books": occurrences,
		"count": len(occurrences),
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get statistics")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.ResolveBookID(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Book not found")
		return
	}

	text, format, err := h.store.GetReport(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Report not found")
		return
	}

	contentType := "text/plain; charset=utf-8"
	if format == "markdown" {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	fmt.Fprint(w, text)
}

func (h *Handlers) ExportBook(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.ResolveBookID(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Book not found")
		return
	}

	analysis, err := h.store.GetAnalysis(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Analysis not found")
		return
	}

	// Set headers for file download
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"book_%s.json\"", id))

	json.NewEncoder(w).Encode(analysis)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
