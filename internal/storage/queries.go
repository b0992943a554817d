package storage

// Database schema queries
const (
	queryCreateBooksTable = `CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT,
		source_path TEXT NOT NULL,
		chapter_count INTEGER NOT NULL DEFAULT 0,
		total_words INTEGER NOT NULL DEFAULT 0,
		report TEXT,
		report_format TEXT,
		raw_json TEXT,
		analyzed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`

	queryCreateChaptersTable = `CREATE TABLE IF NOT EXISTS chapters (
		book_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		title TEXT,
		words INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (book_id, seq),
		FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE
	)`

	queryCreateModelTokensTable = `CREATE TABLE IF NOT EXISTS model_tokens (
		book_id TEXT NOT NULL,
		model TEXT NOT NULL,
		tokens INTEGER NOT NULL DEFAULT 0,
		cost REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (book_id, model),
		FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE
	)`

	queryCreateWordFrequenciesTable = `CREATE TABLE IF NOT EXISTS word_frequencies (
		book_id TEXT NOT NULL,
		word TEXT NOT NULL,
		count INTEGER NOT NULL,
		rank INTEGER NOT NULL,
		PRIMARY KEY (book_id, word),
		FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE
	)`

	queryCreateIndexBooksSource     = `CREATE INDEX IF NOT EXISTS idx_books_source ON books(source_path)`
	queryCreateIndexBooksAnalyzed   = `CREATE INDEX IF NOT EXISTS idx_books_analyzed ON books(analyzed_at)`
	queryCreateIndexFrequenciesWord = `CREATE INDEX IF NOT EXISTS idx_frequencies_word ON word_frequencies(word)`
	queryCreateIndexFrequenciesRank = `CREATE INDEX IF NOT EXISTS idx_frequencies_rank ON word_frequencies(book_id, rank)`

	queryInsertBook = `INSERT INTO books (id, title, author, source_path, chapter_count, total_words, report, report_format, raw_json, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryInsertChapter = `INSERT INTO chapters (book_id, seq, title, words)
		VALUES (?, ?, ?, ?)`

	queryInsertModelTokens = `INSERT INTO model_tokens (book_id, model, tokens, cost)
		VALUES (?, ?, ?, ?)`

	queryInsertWordFrequency = `INSERT INTO word_frequencies (book_id, word, count, rank)
		VALUES (?, ?, ?, ?)`

	queryDeleteBookBySource = `DELETE FROM books WHERE source_path = ?`

	queryDeleteBook = `DELETE FROM books WHERE id = ?`

	querySelectBook = `SELECT id, title, author, source_path, chapter_count, total_words,
		(SELECT COALESCE(SUM(cost), 0) FROM model_tokens WHERE book_id = books.id),
		analyzed_at
		FROM books WHERE id = ?`

	querySelectBookBySource = `SELECT id, title, author, source_path, chapter_count, total_words,
		(SELECT COALESCE(SUM(cost), 0) FROM model_tokens WHERE book_id = books.id),
		analyzed_at
		FROM books WHERE source_path = ?`

	queryListBooks = `SELECT id, title, author, source_path, chapter_count, total_words,
		(SELECT COALESCE(SUM(cost), 0) FROM model_tokens WHERE book_id = books.id),
		analyzed_at
		FROM books ORDER BY analyzed_at DESC LIMIT ? OFFSET ?`

	queryResolveBookID = `SELECT id FROM books WHERE id LIKE ? || '%' LIMIT 2`

	querySelectAnalysis = `SELECT raw_json FROM books WHERE id = ?`

	querySelectReport = `SELECT report, report_format FROM books WHERE id = ?`

	querySearchBooks = `SELECT id, title, author, source_path, chapter_count, total_words,
		(SELECT COALESCE(SUM(cost), 0) FROM model_tokens WHERE book_id = books.id),
		analyzed_at
		FROM books
		WHERE title LIKE '%' || ? || '%' OR author LIKE '%' || ? || '%'
		ORDER BY analyzed_at DESC LIMIT ?`

	queryWordOccurrences = `SELECT b.id, b.title, wf.count
		FROM word_frequencies wf
		JOIN books b ON wf.book_id = b.id
		WHERE wf.word = ?
		ORDER BY wf.count DESC
		LIMIT ?`

	queryCountBooks    = `SELECT COUNT(*) FROM books`
	queryCountChapters = `SELECT COALESCE(SUM(chapter_count), 0) FROM books`
	querySumWords      = `SELECT COALESCE(SUM(total_words), 0) FROM books`

	queryModelTotals = `SELECT model, SUM(tokens), SUM(cost)
		FROM model_tokens GROUP BY model ORDER BY model`

	queryTopWords = `SELECT word, SUM(count) AS total
		FROM word_frequencies GROUP BY word ORDER BY total DESC LIMIT ?`
)
