package bibtex

import (
	"sort"
	"strings"
)

// Index tracks citation keys and DOIs across entries.
// The publications page does not need unique keys; the index only reports them.
type Index struct {
	// Keys maps citation keys to the number of entries using them
	Keys map[string]int
	// DOIs maps normalized DOI values to the citation keys that carry them
	DOIs map[string][]string
}

// Duplicate describes a key or DOI shared by more than one entry.
type Duplicate struct {
	Kind  string   `json:"kind"` // "key" or "doi"
	Value string   `json:"value"`
	Keys  []string `json:"keys"`
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		Keys: make(map[string]int),
		DOIs: make(map[string][]string),
	}
}

// BuildIndex indexes all entries.
func BuildIndex(entries []Entry) *Index {
	idx := NewIndex()
	for _, e := range entries {
		idx.Add(e)
	}
	return idx
}

// Add records an entry's key and DOI.
func (idx *Index) Add(e Entry) {
	idx.Keys[e.Key]++
	if doi := normalizeDOI(e.Field("doi")); doi != "" {
		idx.DOIs[doi] = append(idx.DOIs[doi], e.Key)
	}
}

// Duplicates lists keys and DOIs used by more than one entry, sorted by value.
func (idx *Index) Duplicates() []Duplicate {
	var dups []Duplicate

	var keys []string
	for key, n := range idx.Keys {
		if n > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		repeated := make([]string, idx.Keys[key])
		for i := range repeated {
			repeated[i] = key
		}
		dups = append(dups, Duplicate{Kind: "key", Value: key, Keys: repeated})
	}

	var dois []string
	for doi, owners := range idx.DOIs {
		if len(owners) > 1 {
			dois = append(dois, doi)
		}
	}
	sort.Strings(dois)
	for _, doi := range dois {
		dups = append(dups, Duplicate{Kind: "doi", Value: doi, Keys: idx.DOIs[doi]})
	}

	return dups
}

// normalizeDOI normalizes a DOI for comparison.
// Removes common prefixes like "https://doi.org/" and lowercases.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}
