package publist

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/matsen/pubsite/internal/bibtex"
)

// compiledTemplates is parsed at init time to fail fast on template errors.
var compiledTemplates *template.Template

func init() {
	compiledTemplates = template.Must(template.New("publist").Parse(entryTemplate))
	template.Must(compiledTemplates.New("error").Parse(errorTemplate))
}

// entryData holds data for one publication item.
type entryData struct {
	Key     string
	Title   string
	Authors string
	Details []Detail
}

// The PDF, DOI and BibTeX links are placeholders; they do not point anywhere yet.
const entryTemplate = `
    <div class="publication-item" data-key="{{.Key}}">
        <div class="pub-title"><h3>{{.Title}}</h3></div>
        <div class="pub-authors"><p>{{.Authors}}</p></div>
        <div class="pub-details"><p>{{range $i, $d := .Details}}{{if $i}}, {{end}}{{if $d.Emphasis}}<em>{{$d.Text}}</em>{{else}}{{$d.Text}}{{end}}{{end}}</p></div>
        <div class="pub-links">
            <a href="#" title="PDF"><i class="fas fa-file-pdf"></i> PDF</a>
            <a href="#" title="DOI"><i class="fas fa-link"></i> DOI</a>
            <a href="#" title="BibTeX"><i class="fas fa-quote-right"></i> BibTeX</a>
        </div>
    </div>`

const errorTemplate = `<div class="error-message">
            <p>Could not load bibliography: {{.}}</p>
        </div>`

// RenderEntry renders one entry as a publication item fragment.
func RenderEntry(e bibtex.Entry) (template.HTML, error) {
	data := entryData{
		Key:     e.Key,
		Title:   NormalizeTitle(e.Field("title")),
		Authors: FormatAuthors(e.Field("author")),
		Details: FormatDetails(e.Fields),
	}

	var buf bytes.Buffer
	if err := compiledTemplates.ExecuteTemplate(&buf, "publist", data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", e.Key, err)
	}
	return template.HTML(buf.String()), nil
}

// RenderList renders entries in order and concatenates the fragments.
func RenderList(entries []bibtex.Entry) (template.HTML, error) {
	var buf bytes.Buffer
	for _, e := range entries {
		item, err := RenderEntry(e)
		if err != nil {
			return "", err
		}
		buf.WriteString(string(item))
	}
	return template.HTML(buf.String()), nil
}

// ErrorBlock renders the inline message shown in place of a publication list.
func ErrorBlock(err error) template.HTML {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}

	var buf bytes.Buffer
	if execErr := compiledTemplates.ExecuteTemplate(&buf, "error", msg); execErr != nil {
		return template.HTML(`<div class="error-message"><p>Could not load bibliography</p></div>`)
	}
	return template.HTML(buf.String())
}
