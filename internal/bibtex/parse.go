package bibtex

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// fieldRegex matches `name = {value}` with an optional trailing comma.
// Values are single-level: the first `}` closes the value.
var fieldRegex = regexp.MustCompile(`(\w+)\s*=\s*\{([^}]*)\}\s*,?`)

// Parse extracts entries from BibTeX source text.
//
// An entry is `@type{key, body}` where the body ends at the first `}` that is
// followed by optional whitespace and then either another `@` or the end of
// input. Nested braces are not counted. Blocks that do not fit this shape are
// skipped; Parse never fails.
func Parse(src string) []Entry {
	var entries []Entry

	pos := 0
	for pos < len(src) {
		at := strings.IndexByte(src[pos:], '@')
		if at < 0 {
			break
		}
		start := pos + at

		entry, end, ok := matchEntry(src, start)
		if !ok {
			pos = start + 1
			continue
		}
		entries = append(entries, entry)
		pos = end
	}

	return entries
}

// matchEntry tries to match one entry starting at src[start] == '@'.
// Returns the entry and the offset just past the match.
func matchEntry(src string, start int) (Entry, int, bool) {
	i := start + 1

	typeEnd := i
	for typeEnd < len(src) && isWordByte(src[typeEnd]) {
		typeEnd++
	}
	if typeEnd == i {
		return Entry{}, 0, false
	}
	entryType := src[i:typeEnd]

	i = skipSpace(src, typeEnd)
	if i >= len(src) || src[i] != '{' {
		return Entry{}, 0, false
	}
	i++

	comma := strings.IndexByte(src[i:], ',')
	if comma <= 0 {
		return Entry{}, 0, false
	}
	key := src[i : i+comma]
	bodyStart := i + comma + 1

	bodyEnd, end, ok := findBodyEnd(src, bodyStart)
	if !ok {
		return Entry{}, 0, false
	}

	entry := Entry{
		Type:   strings.ToLower(entryType),
		Key:    strings.TrimSpace(key),
		Fields: parseFields(src[bodyStart:bodyEnd]),
	}

	// Fields named type or key shadow the parsed values.
	if v, ok := entry.Fields["type"]; ok {
		entry.Type = v
	}
	if v, ok := entry.Fields["key"]; ok {
		entry.Key = v
	}

	return entry, end, true
}

// findBodyEnd locates the closing brace of an entry body: the first `}` at or
// after from that is followed by whitespace and then `@` or end of input.
// Returns the brace offset and the offset after the trailing whitespace.
func findBodyEnd(src string, from int) (int, int, bool) {
	for i := from; i < len(src); i++ {
		if src[i] != '}' {
			continue
		}
		next := skipSpace(src, i+1)
		if next == len(src) || src[next] == '@' {
			return i, next, true
		}
	}
	return 0, 0, false
}

// parseFields collects `name = {value}` pairs from an entry body.
func parseFields(body string) map[string]string {
	fields := make(map[string]string)
	for _, m := range fieldRegex.FindAllStringSubmatch(body, -1) {
		fields[strings.ToLower(m[1])] = normalizeSpace(m[2])
	}
	return fields
}

// normalizeSpace collapses whitespace runs to one space and trims the ends.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func skipSpace(src string, i int) int {
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}
