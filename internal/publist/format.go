// Package publist formats bibliography entries for the publications page.
package publist

import (
	"regexp"
	"strings"
)

// MaxListedAuthors is the most authors listed before collapsing to "et al.".
const MaxListedAuthors = 3

// UntitledPlaceholder is shown for entries without a title.
const UntitledPlaceholder = "Untitled"

// authorSeparator splits BibTeX author lists. "and" is case-insensitive.
var authorSeparator = regexp.MustCompile(`(?i) and `)

// FormatAuthors turns a raw BibTeX author field into a display string.
// Up to three names are joined with ", "; longer lists become "First et al.".
func FormatAuthors(raw string) string {
	if raw == "" {
		return ""
	}

	names := authorSeparator.Split(raw, -1)
	for i, name := range names {
		names[i] = strings.TrimSpace(name)
	}

	if len(names) <= MaxListedAuthors {
		return strings.Join(names, ", ")
	}
	return names[0] + " et al."
}

// Detail is one piece of the publication detail line.
type Detail struct {
	Text     string
	Emphasis bool // venue names are italicized
}

// FormatDetails builds the detail line from an entry's fields in fixed order:
// journal, booktitle, volume, pages, year. Absent or empty fields are omitted.
func FormatDetails(fields map[string]string) []Detail {
	var parts []Detail
	if v := fields["journal"]; v != "" {
		parts = append(parts, Detail{Text: v, Emphasis: true})
	}
	if v := fields["booktitle"]; v != "" {
		parts = append(parts, Detail{Text: v, Emphasis: true})
	}
	if v := fields["volume"]; v != "" {
		parts = append(parts, Detail{Text: "Vol. " + v})
	}
	if v := fields["pages"]; v != "" {
		parts = append(parts, Detail{Text: "pp. " + v})
	}
	if v := fields["year"]; v != "" {
		parts = append(parts, Detail{Text: v})
	}
	return parts
}

// JoinDetails returns the plain-text detail line.
func JoinDetails(parts []Detail) string {
	texts := make([]string, len(parts))
	for i, p := range parts {
		texts[i] = p.Text
	}
	return strings.Join(texts, ", ")
}

// NormalizeTitle strips BibTeX case-protection braces.
func NormalizeTitle(raw string) string {
	if raw == "" {
		return UntitledPlaceholder
	}
	return strings.NewReplacer("{", "", "}", "").Replace(raw)
}
