package pipeline

import "github.com/matsen/pubsite/internal/bibtex"

// Buckets partitions entries by type for display.
type Buckets struct {
	Journal    []bibtex.Entry
	Conference []bibtex.Entry
	Other      []bibtex.Entry // counted in the total, never rendered
}

// Counts are the summary counters published with the lists.
type Counts struct {
	Total      int `json:"total"`
	Journal    int `json:"journal"`
	Conference int `json:"conference"`
}

// Partition splits entries into journal (article), conference (inproceedings)
// and other buckets, preserving source order within each.
func Partition(entries []bibtex.Entry) Buckets {
	var b Buckets
	for _, e := range entries {
		switch e.Type {
		case bibtex.TypeArticle:
			b.Journal = append(b.Journal, e)
		case bibtex.TypeInProceedings:
			b.Conference = append(b.Conference, e)
		default:
			b.Other = append(b.Other, e)
		}
	}
	return b
}

// Counts returns the total and per-bucket counts.
func (b Buckets) Counts() Counts {
	return Counts{
		Total:      len(b.Journal) + len(b.Conference) + len(b.Other),
		Journal:    len(b.Journal),
		Conference: len(b.Conference),
	}
}
