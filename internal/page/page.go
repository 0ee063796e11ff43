// Package page edits HTML pages: display regions by id, shared header and
// footer fragments, and navigation highlighting.
package page

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Position is where a fragment is inserted relative to <body>.
type Position int

const (
	// AfterBegin inserts just inside <body>, before its first child.
	AfterBegin Position = iota
	// BeforeEnd inserts just inside <body>, after its last child.
	BeforeEnd
)

// NavClass marks the element that contains navigation links.
const NavClass = "site-nav"

// ActiveClass is added to the navigation link of the current page.
const ActiveClass = "active"

// Document is a parsed HTML page.
type Document struct {
	root *html.Node
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses an HTML page held in memory.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ElementByID returns the first element with the given id, or nil.
func (d *Document) ElementByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	return findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *html.Node {
	return findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
}

// SetInnerHTML replaces the children of the element with the given id.
// Returns false if no such element exists or the markup cannot be parsed.
func (d *Document) SetInnerHTML(id string, markup template.HTML) bool {
	el := d.ElementByID(id)
	if el == nil {
		return false
	}
	nodes, err := html.ParseFragment(strings.NewReader(string(markup)), el)
	if err != nil {
		return false
	}
	removeChildren(el)
	for _, n := range nodes {
		el.AppendChild(n)
	}
	return true
}

// SetText replaces the children of the element with the given id by a text node.
// Returns false if no such element exists.
func (d *Document) SetText(id, text string) bool {
	el := d.ElementByID(id)
	if el == nil {
		return false
	}
	removeChildren(el)
	el.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return true
}

// InsertFragment parses fragment in the context of <body> and inserts it at pos.
func (d *Document) InsertFragment(pos Position, fragment string) error {
	body := d.Body()
	if body == nil {
		return fmt.Errorf("page has no body")
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}

	switch pos {
	case AfterBegin:
		first := body.FirstChild
		for _, n := range nodes {
			body.InsertBefore(n, first)
		}
	case BeforeEnd:
		for _, n := range nodes {
			body.AppendChild(n)
		}
	default:
		return fmt.Errorf("unknown insert position %d", pos)
	}
	return nil
}

// HighlightNav adds the active class to navigation links whose data-page
// matches current. Returns the number of links marked.
func (d *Document) HighlightNav(current string) int {
	marked := 0
	walk(d.root, func(n *html.Node) {
		if n.Type != html.ElementNode || !hasClass(n, NavClass) {
			return
		}
		walk(n, func(a *html.Node) {
			if a.Type != html.ElementNode || a.DataAtom != atom.A {
				return
			}
			target, ok := lookupAttr(a, "data-page")
			if !ok || target != current {
				return
			}
			if addClass(a, ActiveClass) {
				marked++
			}
		})
	})
	return marked
}

// Render writes the page as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String returns the rendered page.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML returns the rendered children of the element with the given id.
func (d *Document) InnerHTML(id string) (string, bool) {
	el := d.ElementByID(id)
	if el == nil {
		return "", false
	}
	var buf bytes.Buffer
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", false
		}
	}
	return buf.String(), true
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func removeChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// addClass appends class to n's class list. Returns false if already present.
func addClass(n *html.Node, class string) bool {
	if hasClass(n, class) {
		return false
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			n.Attr[i].Val = strings.TrimSpace(a.Val + " " + class)
			return true
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	return true
}
