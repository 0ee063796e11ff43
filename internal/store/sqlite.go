// Package store keeps an ephemeral SQLite index of bibliography entries for
// search and statistics.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/pubsite/internal/bibtex"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// TypeCount is the number of entries of one type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// YearCount is the number of entries published in one year.
// Entries without a numeric year are grouped under Year 0.
type YearCount struct {
	Year       int `json:"year"`
	Total      int `json:"total"`
	Journal    int `json:"journal"`
	Conference int `json:"conference"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes; also keeps :memory: on one connection

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		-- One row per parsed entry; citation keys are not unique
		CREATE TABLE IF NOT EXISTS entries (
			seq INTEGER PRIMARY KEY,
			cite_key TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			title TEXT,
			author TEXT,
			pub_year INTEGER,
			fields_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(entry_type);

		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			seq UNINDEXED,
			cite_key,
			title,
			author,
			venue
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the index and loads entries in order.
func (d *DB) Rebuild(entries []bibtex.Entry) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return 0, fmt.Errorf("clearing entries table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM entries_fts"); err != nil {
		return 0, fmt.Errorf("clearing entries_fts table: %w", err)
	}

	entryStmt, err := tx.Prepare(`
		INSERT INTO entries (seq, cite_key, entry_type, title, author, pub_year, fields_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing entries insert: %w", err)
	}
	defer entryStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO entries_fts (seq, cite_key, title, author, venue)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, e := range entries {
		fieldsJSON, err := json.Marshal(e.Fields)
		if err != nil {
			return 0, fmt.Errorf("marshaling fields for %s: %w", e.Key, err)
		}

		_, err = entryStmt.Exec(i+1, e.Key, e.Type, e.Field("title"), e.Field("author"),
			nullableYear(e.Field("year")), string(fieldsJSON))
		if err != nil {
			return 0, fmt.Errorf("inserting entry %s: %w", e.Key, err)
		}

		venue := strings.TrimSpace(e.Field("journal") + " " + e.Field("booktitle"))
		if _, err := ftsStmt.Exec(i+1, e.Key, e.Field("title"), e.Field("author"), venue); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return len(entries), nil
}

// Count returns the total number of entries.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count)
	return count, err
}

// All returns every entry in source order.
func (d *DB) All() ([]bibtex.Entry, error) {
	rows, err := d.db.Query(`SELECT cite_key, entry_type, fields_json FROM entries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Search performs a full-text search over key, title, author and venue.
func (d *DB) Search(query string, limit int) ([]bibtex.Entry, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT cite_key, entry_type, fields_json
		FROM entries
		WHERE seq IN (SELECT seq FROM entries_fts WHERE entries_fts MATCH ?)
		ORDER BY seq
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// CountByType returns entry counts per type, most common first.
func (d *DB) CountByType() ([]TypeCount, error) {
	rows, err := d.db.Query(`
		SELECT entry_type, COUNT(*) AS n
		FROM entries
		GROUP BY entry_type
		ORDER BY n DESC, entry_type`)
	if err != nil {
		return nil, fmt.Errorf("counting by type: %w", err)
	}
	defer rows.Close()

	var counts []TypeCount
	for rows.Next() {
		var c TypeCount
		if err := rows.Scan(&c.Type, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountByYear returns per-year totals and bucket counts, newest first.
func (d *DB) CountByYear() ([]YearCount, error) {
	rows, err := d.db.Query(`
		SELECT COALESCE(pub_year, 0) AS y,
			COUNT(*),
			SUM(CASE WHEN entry_type = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN entry_type = ? THEN 1 ELSE 0 END)
		FROM entries
		GROUP BY y
		ORDER BY y DESC`, bibtex.TypeArticle, bibtex.TypeInProceedings)
	if err != nil {
		return nil, fmt.Errorf("counting by year: %w", err)
	}
	defer rows.Close()

	var counts []YearCount
	for rows.Next() {
		var c YearCount
		if err := rows.Scan(&c.Year, &c.Total, &c.Journal, &c.Conference); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (bibtex.Entry, error) {
	var e bibtex.Entry
	var fieldsJSON string
	if err := s.Scan(&e.Key, &e.Type, &fieldsJSON); err != nil {
		return bibtex.Entry{}, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &e.Fields); err != nil {
		return bibtex.Entry{}, fmt.Errorf("parsing fields for %s: %w", e.Key, err)
	}
	return e, nil
}

func scanEntries(rows *sql.Rows) ([]bibtex.Entry, error) {
	var entries []bibtex.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// prepareFTSQuery quotes each term and adds a prefix wildcard, joined with AND.
func prepareFTSQuery(query string) string {
	var terms []string
	for _, word := range strings.Fields(query) {
		escaped := strings.ReplaceAll(word, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}
	return strings.Join(terms, " AND ")
}

// nullableYear returns the year as an integer, or nil when it is not numeric.
func nullableYear(year string) interface{} {
	n, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return nil
	}
	return n
}
