package bibtex

import (
	"fmt"
	"sort"
	"strings"
)

// leadingFields are written first, in this order; other fields follow sorted by name.
var leadingFields = []string{"author", "title", "journal", "booktitle", "volume", "pages", "year"}

// fallbackType is written in the header when the entry type is not a plain word.
const fallbackType = "misc"

// fallbackKey is written in the header when the key contains a comma.
const fallbackKey = "entry"

// Format converts an entry back to BibTeX text.
//
// Every field is written, empty ones included, so an entry returned by Parse
// parses back to an equal entry. Fields named type and key stay fields: they
// override the header on re-parse, which keeps types such as "Technical Report"
// that cannot be written after the @.
func Format(e Entry) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", headerType(e.Type), headerKey(e.Key)))

	for _, name := range orderedFieldNames(e.Fields) {
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", name, e.Fields[name]))
	}

	b.WriteString("}\n")

	return b.String()
}

// FormatList converts multiple entries to BibTeX, separated by blank lines.
func FormatList(entries []Entry) string {
	var out []string
	for _, e := range entries {
		out = append(out, Format(e))
	}
	return strings.Join(out, "\n")
}

// headerType returns t if Parse can read it after the @, else fallbackType.
func headerType(t string) string {
	if t == "" {
		return fallbackType
	}
	for i := 0; i < len(t); i++ {
		if !isWordByte(t[i]) {
			return fallbackType
		}
	}
	return t
}

// headerKey returns the header spelling of k. An empty key is written as a
// single space, which Parse accepts and trims back to "".
func headerKey(k string) string {
	if k == "" {
		return " "
	}
	if strings.Contains(k, ",") {
		return fallbackKey
	}
	return k
}

// orderedFieldNames returns field names with the common fields first.
func orderedFieldNames(fields map[string]string) []string {
	seen := make(map[string]bool, len(leadingFields))
	var names []string
	for _, name := range leadingFields {
		seen[name] = true
		if _, ok := fields[name]; ok {
			names = append(names, name)
		}
	}

	var rest []string
	for name := range fields {
		if seen[name] {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)

	return append(names, rest...)
}
