// Package bibtex parses and writes the small subset of BibTeX used for the
// publications page.
package bibtex

// Entry is one bibliographic record.
type Entry struct {
	Type   string            `json:"type"`   // lowercased entry type: article, inproceedings, ...
	Key    string            `json:"key"`    // citation key, trimmed
	Fields map[string]string `json:"fields"` // lowercased field name -> normalized value
}

// Field returns the named field value, or "" if absent.
func (e Entry) Field(name string) string {
	return e.Fields[name]
}

// Common entry types.
const (
	TypeArticle       = "article"
	TypeInProceedings = "inproceedings"
)
