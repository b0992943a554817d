package models

import (
	"time"
)

type Book struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	SourcePath string    `json:"source_path"`
	Chapters   []Chapter `json:"chapters,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Chapter struct {
	Seq   int    `json:"seq"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type ModelTokens struct {
	Model      string `json:"model"`
	Total      int    `json:"total"`
	PerChapter []int  `json:"per_chapter"`
}

type ModelCost struct {
	Model  string  `json:"model"`
	Tokens int     `json:"tokens"`
	Cost   float64 `json:"cost"`
}

type Analysis struct {
	BookID       string          `json:"book_id"`
	Title        string          `json:"title"`
	Author       string          `json:"author"`
	SourcePath   string          `json:"source_path"`
	ChapterCount int             `json:"chapter_count"`
	TotalWords   int             `json:"total_words"`
	ChapterWords []int           `json:"chapter_words"`
	Frequencies  []WordFrequency `json:"frequencies"`
	Tokens       []ModelTokens   `json:"tokens"`
	Costs        []ModelCost     `json:"costs"`
	AnalyzedAt   time.Time       `json:"analyzed_at"`
}

type BookSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	SourcePath   string    `json:"source_path"`
	ChapterCount int       `json:"chapter_count"`
	TotalWords   int       `json:"total_words"`
	TotalCost    float64   `json:"total_cost"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

type LibraryStats struct {
	TotalBooks    int             `json:"total_books"`
	TotalChapters int             `json:"total_chapters"`
	TotalWords    int             `json:"total_words"`
	ModelTotals   []ModelCost     `json:"model_totals"`
	EstimatedCost float64         `json:"estimated_cost"`
	TopWords      []WordFrequency `json:"top_words"`
}

type WordOccurrence struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Count  int    `json:"count"`
}
