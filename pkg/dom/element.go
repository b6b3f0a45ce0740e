package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Element wraps one element node. A Document hands out exactly one Element
// per node, so *Element values can be compared and used as map keys.
type Element struct {
	doc       *Document
	node      *html.Node
	listeners map[string][]*listener
}

// Document returns the owning document.
func (e *Element) Document() *Document { return e.doc }

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node { return e.node }

// Tag returns the lower-case tag name.
func (e *Element) Tag() string { return e.node.Data }

// Attr returns the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// GetAttr returns the named attribute or "".
func (e *Element) GetAttr(name string) string { return getAttr(e.node, name) }

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, val string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: val})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	e.node.Attr = attrs
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

// ID returns the id attribute.
func (e *Element) ID() string { return e.GetAttr("id") }

// SetID sets the id attribute.
func (e *Element) SetID(id string) { e.SetAttr("id", id) }

// Href returns the raw href attribute.
func (e *Element) Href() string { return e.GetAttr("href") }

// Title returns the title attribute.
func (e *Element) Title() string { return e.GetAttr("title") }

// SetTitle sets the title attribute.
func (e *Element) SetTitle(s string) { e.SetAttr("title", s) }

// Disabled reports whether the disabled attribute is present.
func (e *Element) Disabled() bool {
	_, ok := e.Attr("disabled")
	return ok
}

// SetDisabled adds or removes the disabled attribute.
func (e *Element) SetDisabled(v bool) {
	if v {
		e.SetAttr("disabled", "")
		return
	}
	e.RemoveAttr("disabled")
}

// Classes returns the class list.
func (e *Element) Classes() []string { return strings.Fields(e.GetAttr("class")) }

// HasClass reports whether c is in the class list.
func (e *Element) HasClass(c string) bool {
	for _, have := range e.Classes() {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass appends c to the class list unless already present.
func (e *Element) AddClass(c string) {
	if e.HasClass(c) {
		return
	}
	e.SetAttr("class", strings.TrimSpace(e.GetAttr("class")+" "+c))
}

// RemoveClass drops c from the class list.
func (e *Element) RemoveClass(c string) {
	var keep []string
	for _, have := range e.Classes() {
		if have != c {
			keep = append(keep, have)
		}
	}
	if len(keep) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(keep, " "))
}

// Text returns the concatenated text of all descendant text nodes.
func (e *Element) Text() string { return selection(e.node).Text() }

// SetText replaces all children with a single text node.
func (e *Element) SetText(s string) {
	e.removeChildren()
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

// InnerHTML renders the element's children.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// SetInnerHTML replaces the element's children with the parsed fragment.
// Inserted elements are reported to mutation observers when e is connected.
func (e *Element) SetInnerHTML(s string) error {
	nodes, err := html.ParseFragment(strings.NewReader(s), e.node)
	if err != nil {
		return err
	}
	e.removeChildren()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	e.doc.notifyAdded(e.node, nodes)
	return nil
}

// AppendHTML parses s in e's context and appends the resulting nodes. It
// returns the inserted top-level elements.
func (e *Element) AppendHTML(s string) ([]*Element, error) {
	nodes, err := html.ParseFragment(strings.NewReader(s), e.node)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	e.doc.notifyAdded(e.node, nodes)
	var out []*Element
	for _, n := range nodes {
		if el := e.doc.wrap(n); el != nil {
			out = append(out, el)
		}
	}
	return out, nil
}

func (e *Element) removeChildren() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

// Parent returns the parent element, or nil at the top of the tree.
func (e *Element) Parent() *Element { return e.doc.wrap(e.node.Parent) }

// Matches reports whether the element matches sel.
func (e *Element) Matches(sel string) bool { return matcher(sel).Match(e.node) }

// Closest returns the nearest inclusive ancestor matching sel.
func (e *Element) Closest(sel string) *Element {
	m := matcher(sel)
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && m.Match(n) {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// QueryAll returns the descendants matching sel in document order.
func (e *Element) QueryAll(sel string) []*Element {
	return e.doc.wrapAll(selection(e.node).FindMatcher(matcher(sel)).Nodes)
}

// Query returns the first descendant matching sel.
func (e *Element) Query(sel string) *Element {
	nodes := selection(e.node).FindMatcher(matcher(sel)).Nodes
	if len(nodes) == 0 {
		return nil
	}
	return e.doc.wrap(nodes[0])
}

// AppendChild moves c to the end of e's children.
func (e *Element) AppendChild(c *Element) {
	detach(c.node)
	e.node.AppendChild(c.node)
	e.doc.notifyAdded(e.node, []*html.Node{c.node})
}

// InsertAfter places c immediately after e, like insertAdjacentElement
// with "afterend". It is a no-op when e has no parent.
func (e *Element) InsertAfter(c *Element) {
	parent := e.node.Parent
	if parent == nil {
		return
	}
	detach(c.node)
	parent.InsertBefore(c.node, e.node.NextSibling)
	e.doc.notifyAdded(parent, []*html.Node{c.node})
}

// Remove detaches e from its parent.
func (e *Element) Remove() { detach(e.node) }

// IsConnected reports whether e is part of the document tree.
func (e *Element) IsConnected() bool { return e.doc.connected(e.node) }

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// OuterHTML renders the element itself.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, e.node)
	return buf.String()
}
