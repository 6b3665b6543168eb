// Package wml provides the in-memory element tree the comparison engine operates on.
//
// The tree is deliberately small: an Element has a qualified name, an ordered
// attribute list, optional text (only for text-bearing leaves such as w:t) and
// ordered children. Parts group a root element with its relationships, and a
// Package groups the main document part with its footnote and endnote parts.
//
// The package knows nothing about any file format; core/xml converts between
// XML bytes and Element trees.
package wml

import "strings"

// Attr is a single qualified attribute.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Element is a node of the document tree.
type Element struct {
	// Name is the qualified element name, e.g. "w:p".
	Name string `json:"name"`

	// Attrs holds attributes in document order.
	Attrs []Attr `json:"attrs,omitempty"`

	// Text is the character content of text-bearing leaves.
	Text string `json:"text,omitempty"`

	// Children holds child elements in document order.
	Children []*Element `json:"children,omitempty"`
}

// New creates an element with the given name and children.
func New(name string, children ...*Element) *Element {
	return &Element{Name: name, Children: children}
}

// NewText creates a text-bearing leaf.
func NewText(name, text string) *Element {
	return &Element{Name: name, Text: text}
}

// Local returns the local part of the element name.
func (e *Element) Local() string {
	if i := strings.IndexByte(e.Name, ':'); i >= 0 {
		return e.Name[i+1:]
	}
	return e.Name
}

// Attr returns the value of the named attribute, or "" when absent.
func (e *Element) Attr(name string) string {
	v, _ := e.LookupAttr(name)
	return v
}

// LookupAttr returns the value of the named attribute and whether it exists.
func (e *Element) LookupAttr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute and returns the element.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// RemoveAttr deletes the named attribute if present.
func (e *Element) RemoveAttr(name string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return
		}
	}
}

// Append adds children and returns the element.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Prepend inserts children before the existing ones.
func (e *Element) Prepend(children ...*Element) *Element {
	e.Children = append(append([]*Element{}, children...), e.Children...)
	return e
}

// Child returns the first direct child with the given name.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns the direct children with the given name.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// RemoveChildren removes every direct child for which drop returns true.
func (e *Element) RemoveChildren(drop func(*Element) bool) {
	kept := e.Children[:0]
	for _, c := range e.Children {
		if !drop(c) {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(e.Children); i++ {
		e.Children[i] = nil
	}
	e.Children = kept
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := e.Shallow()
	if len(e.Children) > 0 {
		c.Children = make([]*Element, len(e.Children))
		for i, child := range e.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Shallow returns a copy of the element with its attributes and text but no children.
func (e *Element) Shallow() *Element {
	c := &Element{Name: e.Name, Text: e.Text}
	if len(e.Attrs) > 0 {
		c.Attrs = append([]Attr(nil), e.Attrs...)
	}
	return c
}

// Walk visits the element and its descendants in document order. Returning
// false from fn skips the children of the visited element.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Descendants returns every descendant with the given name in document order.
// An empty name matches every descendant.
func (e *Element) Descendants(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		c.Walk(func(d *Element) bool {
			if name == "" || d.Name == name {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// Has reports whether any descendant has one of the given names.
func (e *Element) Has(names ...string) bool {
	found := false
	for _, c := range e.Children {
		c.Walk(func(d *Element) bool {
			if found {
				return false
			}
			for _, n := range names {
				if d.Name == n {
					found = true
					return false
				}
			}
			return true
		})
	}
	return found
}

// InnerText concatenates the text of all text-bearing descendants, including the
// element itself.
func (e *Element) InnerText() string {
	var b strings.Builder
	e.Walk(func(d *Element) bool {
		b.WriteString(d.Text)
		return true
	})
	return b.String()
}
