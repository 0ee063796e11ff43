package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matsen/pubsite/internal/bibtex"
)

var testEntries = []bibtex.Entry{
	{
		Type: "article",
		Key:  "Smith2020",
		Fields: map[string]string{
			"author":  "John Smith and Jane Doe",
			"title":   "Machine Learning in Biology",
			"journal": "Nature",
			"year":    "2020",
		},
	},
	{
		Type: "inproceedings",
		Key:  "Doe2021",
		Fields: map[string]string{
			"author":    "Jane Doe",
			"title":     "Deep Learning for Proteins",
			"booktitle": "Proceedings of ICML",
			"year":      "2021",
		},
	},
	{
		Type: "article",
		Key:  "Brown2021",
		Fields: map[string]string{
			"author":  "Bob Brown",
			"title":   "Statistical Genomics",
			"journal": "Genetics",
			"year":    "2021",
		},
	},
	{
		Type:   "misc",
		Key:    "Note",
		Fields: map[string]string{"title": "Undated note"},
	},
}

// setupTestDB creates an in-memory database loaded with testEntries.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	n, err := db.Rebuild(testEntries)
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if n != len(testEntries) {
		t.Fatalf("Rebuild() = %d, want %d", n, len(testEntries))
	}
	return db
}

func TestRebuild_AllRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if diff := cmp.Diff(testEntries, got); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 4 {
		t.Errorf("Count() = %d, want 4", count)
	}
}

func TestRebuild_Replaces(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.Rebuild(testEntries[:1]); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	count, _ := db.Count()
	if count != 1 {
		t.Errorf("Count() after second rebuild = %d, want 1", count)
	}
	results, err := db.Search("proteins", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() found stale entries: %+v", results)
	}
}

func TestRebuild_DuplicateKeys(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	dups := []bibtex.Entry{
		{Type: "article", Key: "same", Fields: map[string]string{"title": "One"}},
		{Type: "article", Key: "same", Fields: map[string]string{"title": "Two"}},
	}
	if _, err := db.Rebuild(dups); err != nil {
		t.Fatalf("Rebuild() with duplicate keys error = %v", err)
	}
	count, _ := db.Count()
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestSearch(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name     string
		query    string
		wantKeys []string
	}{
		{"title word", "learning", []string{"Smith2020", "Doe2021"}},
		{"prefix match", "genom", []string{"Brown2021"}},
		{"author", "doe", []string{"Smith2020", "Doe2021"}},
		{"venue", "nature", []string{"Smith2020"}},
		{"key", "brown2021", []string{"Brown2021"}},
		{"all terms required", "jane proteins", []string{"Doe2021"}},
		{"no match", "quantum", nil},
		{"empty query", "   ", nil},
		{"quotes are escaped", `"learning`, []string{"Smith2020", "Doe2021"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := db.Search(tt.query, 10)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.query, err)
			}
			var keys []string
			for _, e := range results {
				keys = append(keys, e.Key)
			}
			if diff := cmp.Diff(tt.wantKeys, keys); diff != "" {
				t.Errorf("Search(%q) keys mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestSearch_Limit(t *testing.T) {
	db := setupTestDB(t)

	results, err := db.Search("learning", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Search() returned %d results, want 1", len(results))
	}
}

func TestCountByType(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.CountByType()
	if err != nil {
		t.Fatalf("CountByType() error = %v", err)
	}
	want := []TypeCount{
		{Type: "article", Count: 2},
		{Type: "inproceedings", Count: 1},
		{Type: "misc", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CountByType() mismatch (-want +got):\n%s", diff)
	}
}

func TestCountByYear(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.CountByYear()
	if err != nil {
		t.Fatalf("CountByYear() error = %v", err)
	}
	want := []YearCount{
		{Year: 2021, Total: 2, Journal: 1, Conference: 1},
		{Year: 2020, Total: 1, Journal: 1, Conference: 0},
		{Year: 0, Total: 1, Journal: 0, Conference: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CountByYear() mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := db.Rebuild(testEntries); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	db.Close()

	// Reopening keeps the data and the schema creation is idempotent.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != len(testEntries) {
		t.Errorf("Count() = %d, want %d", count, len(testEntries))
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"one", `"one"*`},
		{"two words", `"two"* AND "words"*`},
		{`say "hi"`, `"say"* AND """hi"""*`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := prepareFTSQuery(tt.input); got != tt.want {
				t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
