package bibtex

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIndex_Duplicates(t *testing.T) {
	idx := BuildIndex([]Entry{
		{Key: "a", Fields: map[string]string{"doi": "10.1/x"}},
		{Key: "a", Fields: map[string]string{}},
		{Key: "b", Fields: map[string]string{"doi": "https://doi.org/10.1/X"}},
		{Key: "c", Fields: map[string]string{"doi": "10.2/y"}},
	})

	got := idx.Duplicates()

	want := []Duplicate{
		{Kind: "key", Value: "a", Keys: []string{"a", "a"}},
		{Kind: "doi", Value: "10.1/x", Keys: []string{"a", "b"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Duplicates() mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_NoDuplicates(t *testing.T) {
	idx := BuildIndex([]Entry{{Key: "a"}, {Key: "b"}})
	if got := idx.Duplicates(); len(got) != 0 {
		t.Errorf("Duplicates() = %+v, want none", got)
	}
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10.1234/ABC", "10.1234/abc"},
		{"https://doi.org/10.1234/abc", "10.1234/abc"},
		{"http://doi.org/10.1234/abc", "10.1234/abc"},
		{"doi.org/10.1234/abc", "10.1234/abc"},
		{"DOI:10.1234/abc", "10.1234/abc"},
		{"  doi:10.1234/abc  ", "10.1234/abc"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeDOI(tt.input); got != tt.want {
				t.Errorf("normalizeDOI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
