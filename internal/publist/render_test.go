package publist

import (
	"errors"
	"strings"
	"testing"

	"github.com/matsen/pubsite/internal/bibtex"
)

func TestRenderEntry(t *testing.T) {
	e := bibtex.Entry{
		Type: "article",
		Key:  "k1",
		Fields: map[string]string{
			"author":  "A and B",
			"title":   "{T}itle",
			"journal": "J",
			"volume":  "4",
			"year":    "2020",
		},
	}

	got, err := RenderEntry(e)
	if err != nil {
		t.Fatalf("RenderEntry() error = %v", err)
	}
	html := string(got)

	checks := []string{
		`<div class="publication-item" data-key="k1">`,
		`<div class="pub-title"><h3>Title</h3></div>`,
		`<div class="pub-authors"><p>A, B</p></div>`,
		`<div class="pub-details"><p><em>J</em>, Vol. 4, 2020</p></div>`,
		`<a href="#" title="PDF">`,
		`<a href="#" title="DOI">`,
		`<a href="#" title="BibTeX">`,
	}
	for _, want := range checks {
		if !strings.Contains(html, want) {
			t.Errorf("RenderEntry() missing %q, got:\n%s", want, html)
		}
	}
}

func TestRenderEntry_MissingFields(t *testing.T) {
	got, err := RenderEntry(bibtex.Entry{Type: "article", Key: "bare", Fields: map[string]string{}})
	if err != nil {
		t.Fatalf("RenderEntry() error = %v", err)
	}
	html := string(got)

	if !strings.Contains(html, "<h3>Untitled</h3>") {
		t.Errorf("RenderEntry() should use placeholder title, got:\n%s", html)
	}
	if !strings.Contains(html, `<div class="pub-authors"><p></p></div>`) {
		t.Errorf("RenderEntry() should render empty authors, got:\n%s", html)
	}
	if !strings.Contains(html, `<div class="pub-details"><p></p></div>`) {
		t.Errorf("RenderEntry() should render empty details, got:\n%s", html)
	}
}

func TestRenderEntry_EscapesText(t *testing.T) {
	e := bibtex.Entry{
		Type:   "article",
		Key:    "x",
		Fields: map[string]string{"title": "<script>alert(1)</script>", "journal": "A & B"},
	}

	got, err := RenderEntry(e)
	if err != nil {
		t.Fatalf("RenderEntry() error = %v", err)
	}
	html := string(got)

	if strings.Contains(html, "<script>") {
		t.Errorf("RenderEntry() should escape title, got:\n%s", html)
	}
	if !strings.Contains(html, "<em>A &amp; B</em>") {
		t.Errorf("RenderEntry() should escape journal, got:\n%s", html)
	}
}

func TestRenderList(t *testing.T) {
	entries := []bibtex.Entry{
		{Type: "article", Key: "first", Fields: map[string]string{"title": "One"}},
		{Type: "article", Key: "second", Fields: map[string]string{"title": "Two"}},
	}

	got, err := RenderList(entries)
	if err != nil {
		t.Fatalf("RenderList() error = %v", err)
	}
	html := string(got)

	if n := strings.Count(html, `class="publication-item"`); n != 2 {
		t.Errorf("RenderList() rendered %d items, want 2", n)
	}
	if strings.Index(html, "One") > strings.Index(html, "Two") {
		t.Errorf("RenderList() should preserve order, got:\n%s", html)
	}
}

func TestRenderList_Empty(t *testing.T) {
	got, err := RenderList(nil)
	if err != nil {
		t.Fatalf("RenderList() error = %v", err)
	}
	if got != "" {
		t.Errorf("RenderList(nil) = %q, want empty", got)
	}
}

func TestErrorBlock(t *testing.T) {
	got := string(ErrorBlock(errors.New("HTTP 404")))

	if !strings.Contains(got, `<div class="error-message">`) {
		t.Errorf("ErrorBlock() missing container, got:\n%s", got)
	}
	if !strings.Contains(got, "Could not load bibliography: HTTP 404") {
		t.Errorf("ErrorBlock() missing message, got:\n%s", got)
	}
}
