// Package dom is a small mutable document model over golang.org/x/net/html.
// It gives the augmentation engine the parts of a browser document it needs:
// selector queries, node insertion and removal, connectivity checks, event
// listeners and document-wide mutation observation.
//
// A Document is not safe for concurrent use. All access is expected to come
// from one goroutine, normally the engine's loop.
package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rect is an element's box in viewport coordinates.
type Rect struct {
	Top, Left, Bottom, Right float64
}

// Layout supplies geometry the model cannot compute itself.
type Layout interface {
	Rect(el *Element) Rect
	Scroll() (x, y float64)
}

type noLayout struct{}

func (noLayout) Rect(*Element) Rect         { return Rect{} }
func (noLayout) Scroll() (float64, float64) { return 0, 0 }

// Document owns a parsed node tree and the wrappers handed out for its
// element nodes.
type Document struct {
	root      *html.Node
	elements  map[*html.Node]*Element
	observers []*MutationObserver
	layout    Layout
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return newDocument(root), nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func newDocument(root *html.Node) *Document {
	return &Document{
		root:     root,
		elements: make(map[*html.Node]*Element),
		layout:   noLayout{},
	}
}

// SetLayout installs the geometry provider used by Rect and Scroll.
func (d *Document) SetLayout(l Layout) {
	if l == nil {
		l = noLayout{}
	}
	d.layout = l
}

// Rect returns the element's box as reported by the layout.
func (d *Document) Rect(el *Element) Rect { return d.layout.Rect(el) }

// Scroll returns the current scroll offsets as reported by the layout.
func (d *Document) Scroll() (x, y float64) { return d.layout.Scroll() }

// wrap returns the one Element for n, creating it on first use.
func (d *Document) wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

// Element returns the wrapper for an element node that belongs to d.
func (d *Document) Element(n *html.Node) *Element { return d.wrap(n) }

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

// Body returns the <body> element.
func (d *Document) Body() *Element { return d.childOfHTML(atom.Body) }

// Head returns the <head> element.
func (d *Document) Head() *Element { return d.childOfHTML(atom.Head) }

func (d *Document) childOfHTML(a atom.Atom) *Element {
	h := d.DocumentElement()
	if h == nil {
		return nil
	}
	for c := h.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return d.wrap(c)
		}
	}
	return nil
}

// CreateElement makes a detached element.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return d.wrap(n)
}

// GetElementByID returns the first connected element with the given id.
func (d *Document) GetElementByID(id string) *Element {
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && getAttr(n, "id") == id {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(d.root)
	return d.wrap(found)
}

// QueryAll returns every element in the document matching sel.
func (d *Document) QueryAll(sel string) []*Element {
	return d.wrapAll(selection(d.root).FindMatcher(matcher(sel)).Nodes)
}

// Query returns the first element in document order matching sel.
func (d *Document) Query(sel string) *Element {
	nodes := selection(d.root).FindMatcher(matcher(sel)).Nodes
	if len(nodes) == 0 {
		return nil
	}
	return d.wrap(nodes[0])
}

func (d *Document) wrapAll(nodes []*html.Node) []*Element {
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if el := d.wrap(n); el != nil {
			out = append(out, el)
		}
	}
	return out
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, ignoring write errors.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

func (d *Document) connected(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}
