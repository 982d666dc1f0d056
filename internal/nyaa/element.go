package nyaa

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element is the navigable document node the assemblers work against.
// Selectors are CSS selectors evaluated below the element.
type Element interface {
	// Find returns the first descendant matching selector.
	Find(selector string) (Element, bool)
	// FindAll returns every matching descendant in document order.
	FindAll(selector string) []Element
	// Children returns the direct children matching selector.
	Children(selector string) []Element
	Attr(name string) (string, bool)
	// Text is the concatenated text of the element and its descendants.
	Text() string
	// DirectText joins the element's own text nodes, each trimmed,
	// skipping text that belongs to child elements.
	DirectText() string
}

// NewDocument parses an HTML body into the root Element.
func NewDocument(r io.Reader) (Element, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return selection{doc.Selection}, nil
}

// FromSelection adapts an existing goquery selection.
func FromSelection(s *goquery.Selection) Element {
	return selection{s}
}

type selection struct {
	s *goquery.Selection
}

func (e selection) Find(selector string) (Element, bool) {
	found := e.s.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return selection{found}, true
}

func (e selection) FindAll(selector string) []Element {
	return wrapAll(e.s.Find(selector))
}

func (e selection) Children(selector string) []Element {
	return wrapAll(e.s.ChildrenFiltered(selector))
}

func (e selection) Attr(name string) (string, bool) {
	return e.s.Attr(name)
}

func (e selection) Text() string {
	return e.s.Text()
}

func (e selection) DirectText() string {
	var b strings.Builder
	e.s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(strings.TrimSpace(c.Text()))
		}
	})
	return b.String()
}

func wrapAll(s *goquery.Selection) []Element {
	out := make([]Element, 0, s.Length())
	s.Each(func(_ int, item *goquery.Selection) {
		out = append(out, selection{item})
	})
	return out
}

// requireAttr reads an attribute that must be present and non-empty.
func requireAttr(e Element, section, name string) (string, error) {
	v, ok := e.Attr(name)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", structural(section, "missing %s attribute", name)
	}
	return v, nil
}

// requireFind is Find for elements whose absence breaks extraction.
func requireFind(e Element, section, selector string) (Element, error) {
	found, ok := e.Find(selector)
	if !ok {
		return nil, structural(section, "no element matches %q", selector)
	}
	return found, nil
}
