package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matsen/pubsite/internal/bibtex"
)

func TestCheckEntries(t *testing.T) {
	full := func(key string) map[string]string {
		return map[string]string{"title": "T " + key, "author": "A", "year": "2020"}
	}

	tests := []struct {
		name    string
		entries []bibtex.Entry
		want    []CheckIssue
	}{
		{
			name: "clean",
			entries: []bibtex.Entry{
				{Type: "article", Key: "a", Fields: full("a")},
				{Type: "inproceedings", Key: "b", Fields: full("b")},
			},
			want: nil,
		},
		{
			name: "duplicate key",
			entries: []bibtex.Entry{
				{Type: "article", Key: "a", Fields: full("a")},
				{Type: "article", Key: "a", Fields: full("a2")},
			},
			want: []CheckIssue{{Type: "duplicate_key", Key: "a", Keys: []string{"a", "a"}}},
		},
		{
			name: "duplicate doi",
			entries: []bibtex.Entry{
				{Type: "article", Key: "a", Fields: map[string]string{"title": "T", "author": "A", "year": "1", "doi": "10.1/x"}},
				{Type: "article", Key: "b", Fields: map[string]string{"title": "T", "author": "A", "year": "1", "doi": "https://doi.org/10.1/X"}},
			},
			want: []CheckIssue{{Type: "duplicate_doi", DOI: "10.1/x", Keys: []string{"a", "b"}}},
		},
		{
			name: "missing displayed fields",
			entries: []bibtex.Entry{
				{Type: "article", Key: "a", Fields: map[string]string{"title": "T"}},
			},
			want: []CheckIssue{
				{Type: "missing_field", Key: "a", Field: "author"},
				{Type: "missing_field", Key: "a", Field: "year"},
			},
		},
		{
			name: "unlisted types are not field-checked",
			entries: []bibtex.Entry{
				{Type: "misc", Key: "m", Fields: map[string]string{}},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkEntries(tt.entries)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("checkEntries() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
