package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jasperwreed/bookstats/internal/models"
)

type SQLiteStore struct {
	writeDB *sql.DB // single connection for writes
	readDB  *sql.DB // pool of connections for reads
	dbPath  string
	config  *Config
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	config := DefaultConfig()
	config.Path = dbPath
	return NewSQLiteStoreWithConfig(config)
}

func NewSQLiteStoreWithConfig(config *Config) (*SQLiteStore, error) {
	dbPath := config.Path
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".bookstats", "library.db")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open write database: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(config.MaxOpenConns)
	readDB.SetMaxIdleConns(config.MaxIdleConns)
	readDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	store := &SQLiteStore{
		writeDB: writeDB,
		readDB:  readDB,
		dbPath:  dbPath,
		config:  config,
	}

	if err := store.initializeDB(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := store.createTables(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initializeDB() error {
	for _, pragma := range s.config.pragmas() {
		if _, err := s.writeDB.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set %s: %w", pragma, err)
		}
	}

	return nil
}

func (s *SQLiteStore) createTables() error {
	queries := []string{
		queryCreateBooksTable,
		queryCreateChaptersTable,
		queryCreateModelTokensTable,
		queryCreateWordFrequenciesTable,
		queryCreateIndexBooksSource,
		queryCreateIndexBooksAnalyzed,
		queryCreateIndexFrequenciesWord,
		queryCreateIndexFrequenciesRank,
	}

	for _, query := range queries {
		if _, err := s.writeDB.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// SaveAnalysis stores a completed analysis together with its rendered
// report. Saving an analysis for a source path that is already in the
// library replaces the previous record.
func (s *SQLiteStore) SaveAnalysis(a *models.Analysis, chapters []models.Chapter, report []byte, format string) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(queryDeleteBookBySource, a.SourcePath); err != nil {
		return fmt.Errorf("failed to replace previous analysis: %w", err)
	}

	if _, err := tx.Exec(
		queryInsertBook,
		a.BookID, a.Title, a.Author, a.SourcePath,
		a.ChapterCount, a.TotalWords,
		string(report), format, string(raw), a.AnalyzedAt,
	); err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	for i, words := range a.ChapterWords {
		title := ""
		if i < len(chapters) {
			title = chapters[i].Title
		}
		if _, err := tx.Exec(queryInsertChapter, a.BookID, i+1, title, words); err != nil {
			return fmt.Errorf("failed to insert chapter %d: %w", i+1, err)
		}
	}

	for _, c := range a.Costs {
		if _, err := tx.Exec(queryInsertModelTokens, a.BookID, c.Model, c.Tokens, c.Cost); err != nil {
			return fmt.Errorf("failed to insert cost for %s: %w", c.Model, err)
		}
	}

	for i, f := range a.Frequencies {
		if _, err := tx.Exec(queryInsertWordFrequency, a.BookID, f.Word, f.Count, i+1); err != nil {
			return fmt.Errorf("failed to insert word frequency: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetBook(id string) (*models.BookSummary, error) {
	book, err := s.scanSummary(s.readDB.QueryRow(querySelectBook, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book %s not found", id)
	}
	return book, err
}

// FindBookBySource returns the stored book for a source path, or nil when
// the path has not been analyzed yet.
func (s *SQLiteStore) FindBookBySource(sourcePath string) (*models.BookSummary, error) {
	book, err := s.scanSummary(s.readDB.QueryRow(querySelectBookBySource, sourcePath))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return book, err
}

// ResolveBookID expands a unique ID prefix to the full book ID.
func (s *SQLiteStore) ResolveBookID(prefix string) (string, error) {
	rows, err := s.readDB.Query(queryResolveBookID, prefix)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("book %s not found", prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("book ID %s is ambiguous", prefix)
	}
}

func (s *SQLiteStore) GetAnalysis(id string) (*models.Analysis, error) {
	var raw sql.NullString
	err := s.readDB.QueryRow(querySelectAnalysis, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	if !raw.Valid || raw.String == "" {
		return nil, fmt.Errorf("book %s has no stored analysis", id)
	}

	var a models.Analysis
	if err := json.Unmarshal([]byte(raw.String), &a); err != nil {
		return nil, fmt.Errorf("failed to decode stored analysis: %w", err)
	}

	return &a, nil
}

func (s *SQLiteStore) GetReport(id string) (text, format string, err error) {
	var report, reportFormat sql.NullString
	err = s.readDB.QueryRow(querySelectReport, id).Scan(&report, &reportFormat)
	if err == sql.ErrNoRows {
		return "", "", fmt.Errorf("book %s not found", id)
	}
	if err != nil {
		return "", "", err
	}

	return report.String, reportFormat.String, nil
}

func (s *SQLiteStore) ListBooks(limit, offset int) ([]models.BookSummary, error) {
	rows, err := s.readDB.Query(queryListBooks, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.collectSummaries(rows)
}

// SearchBooks matches stored books by title or author substring.
func (s *SQLiteStore) SearchBooks(query string, limit int) ([]models.BookSummary, error) {
	rows, err := s.readDB.Query(querySearchBooks, query, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.collectSummaries(rows)
}

// WordOccurrences returns the books containing an exact word token, most
// occurrences first.
func (s *SQLiteStore) WordOccurrences(word string, limit int) ([]models.WordOccurrence, error) {
	rows, err := s.readDB.Query(queryWordOccurrences, word, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var occurrences []models.WordOccurrence
	for rows.Next() {
		var o models.WordOccurrence
		if err := rows.Scan(&o.BookID, &o.Title, &o.Count); err != nil {
			return nil, err
		}
		occurrences = append(occurrences, o)
	}

	return occurrences, rows.Err()
}

func (s *SQLiteStore) GetStats() (*models.LibraryStats, error) {
	stats := &models.LibraryStats{}

	if err := s.readDB.QueryRow(queryCountBooks).Scan(&stats.TotalBooks); err != nil {
		return nil, err
	}
	if err := s.readDB.QueryRow(queryCountChapters).Scan(&stats.TotalChapters); err != nil {
		return nil, err
	}
	if err := s.readDB.QueryRow(querySumWords).Scan(&stats.TotalWords); err != nil {
		return nil, err
	}

	rows, err := s.readDB.Query(queryModelTotals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var mc models.ModelCost
		if err := rows.Scan(&mc.Model, &mc.Tokens, &mc.Cost); err != nil {
			return nil, err
		}
		stats.ModelTotals = append(stats.ModelTotals, mc)
		stats.EstimatedCost += mc.Cost
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	topRows, err := s.readDB.Query(queryTopWords, 10)
	if err != nil {
		return nil, err
	}
	defer topRows.Close()

	for topRows.Next() {
		var f models.WordFrequency
		if err := topRows.Scan(&f.Word, &f.Count); err != nil {
			return nil, err
		}
		stats.TopWords = append(stats.TopWords, f)
	}

	return stats, topRows.Err()
}

func (s *SQLiteStore) DeleteBook(id string) error {
	result, err := s.writeDB.Exec(queryDeleteBook, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("book %s not found", id)
	}

	return nil
}

func (s *SQLiteStore) Path() string {
	return s.dbPath
}

func (s *SQLiteStore) Close() error {
	var errs []error

	// Run PRAGMA optimize before closing for better long-term performance
	if _, err := s.writeDB.Exec("PRAGMA optimize"); err != nil {
		errs = append(errs, fmt.Errorf("failed to optimize: %w", err))
	}

	if err := s.readDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close read db: %w", err))
	}

	if err := s.writeDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close write db: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *SQLiteStore) scanSummary(row rowScanner) (*models.BookSummary, error) {
	var b models.BookSummary
	var author sql.NullString

	err := row.Scan(
		&b.ID, &b.Title, &author, &b.SourcePath,
		&b.ChapterCount, &b.TotalWords, &b.TotalCost, &b.AnalyzedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Author = author.String
	return &b, nil
}

func (s *SQLiteStore) collectSummaries(rows *sql.Rows) ([]models.BookSummary, error) {
	var books []models.BookSummary
	for rows.Next() {
		b, err := s.scanSummary(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}

	return books, rows.Err()
}
