// Package xml converts between XML bytes and wml element trees.
//
// Parsing goes through xmlquery so that parts can be located with XPath before
// conversion; serialization writes the wml tree directly.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated by using Go's xml.Decoder
//     which doesn't fetch external entities by default, and we explicitly
//     disable entity expansion in validation functions.
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and inherits its security properties.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/redline/core/encoding"
	"github.com/FocuswithJustin/redline/core/wml"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// ValidationResult contains the result of XML validation.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Line    int
	Column  int
	Message string
}

// knownSpaces maps namespace URIs that may survive xmlquery's prefix
// resolution back to their conventional prefixes.
var knownSpaces = map[string]string{
	"http://www.w3.org/XML/1998/namespace": "xml",
	wml.NSW:                                "w",
	wml.NSR:                                "r",
	wml.NSM:                                "m",
	wml.NSWP:                               "wp",
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Validate checks XML data for well-formedness.
//
// Security: entity expansion is disabled. Go's xml.Decoder does not fetch
// external entities by default, and internal entity expansion is turned off too.
func Validate(data []byte) ValidationResult {
	result := ValidationResult{Valid: true}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Entity = map[string]string{}

	for {
		_, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := decoder.InputPos()
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Line:    line,
				Message: err.Error(),
			})
			break
		}
	}

	return result
}

// Root converts the first element of the document into a wml tree.
func (d *Document) Root() *wml.Element {
	if d == nil || d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return convert(child)
		}
	}
	return nil
}

// Find executes an XPath query and converts every matching element.
func (d *Document) Find(expr string) ([]*wml.Element, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	var out []*wml.Element
	for _, n := range nodes {
		if n.Type == xmlquery.ElementNode {
			out = append(out, convert(n))
		}
	}
	return out, nil
}

// FindOne executes an XPath query and converts the first matching element.
// It returns nil without error when nothing matches.
func (d *Document) FindOne(expr string) (*wml.Element, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	n, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	if n == nil {
		return nil, nil
	}
	return convert(n), nil
}

// ParseElement parses XML data and returns its root element as a wml tree.
func ParseElement(data []byte) (*wml.Element, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parsing XML: no root element")
	}
	return root, nil
}

// ParseRels parses a relationships part.
func ParseRels(data []byte) ([]wml.Relationship, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	elems, err := doc.Find("//Relationship")
	if err != nil {
		return nil, err
	}
	rels := make([]wml.Relationship, 0, len(elems))
	for _, e := range elems {
		rels = append(rels, wml.Relationship{
			ID:       e.Attr("Id"),
			Type:     e.Attr("Type"),
			Target:   e.Attr("Target"),
			External: e.Attr("TargetMode") == "External",
		})
	}
	return rels, nil
}

func convert(n *xmlquery.Node) *wml.Element {
	e := &wml.Element{Name: qualify(n.Prefix, n.Data)}
	for _, a := range n.Attr {
		e.Attrs = append(e.Attrs, wml.Attr{Name: attrName(a), Value: a.Value})
	}

	var text strings.Builder
	hasText := false
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode:
			e.Children = append(e.Children, convert(child))
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(child.Data)
			hasText = true
		}
	}
	if hasText {
		s := text.String()
		if isTextElement(e.Name) || (len(e.Children) == 0 && strings.TrimSpace(s) != "") {
			e.Text = s
		}
	}
	return e
}

func isTextElement(name string) bool {
	switch name {
	case wml.T, wml.DelText, wml.InstrText, wml.DelInstr:
		return true
	}
	return false
}

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

func attrName(a xmlquery.Attr) string {
	space := a.Name.Space
	if p, ok := knownSpaces[space]; ok {
		space = p
	}
	if space == "" {
		return a.Name.Local
	}
	return space + ":" + a.Name.Local
}

// MarshalOptions controls serialization.
type MarshalOptions struct {
	// Indent, when non-empty, pretty-prints element-only content. Text-bearing
	// elements are never re-indented.
	Indent string

	// Declaration writes the XML declaration first.
	Declaration bool
}

// Marshal serializes a wml tree. Namespace declarations for the w, r, m and wp
// prefixes are added to the root when the tree uses them and does not declare them.
func Marshal(root *wml.Element, opts MarshalOptions) []byte {
	var buf bytes.Buffer
	if opts.Declaration {
		buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
		buf.WriteString("\n")
	}
	root = withNamespaces(root)
	writeElement(&buf, root, 0, opts.Indent)
	return buf.Bytes()
}

// MarshalRels serializes a relationship list.
func MarshalRels(rels []wml.Relationship) []byte {
	root := &wml.Element{Name: "Relationships"}
	root.SetAttr("xmlns", wml.NSRel)
	for _, r := range rels {
		e := &wml.Element{Name: "Relationship"}
		e.SetAttr("Id", r.ID).SetAttr("Type", r.Type).SetAttr("Target", r.Target)
		if r.External {
			e.SetAttr("TargetMode", "External")
		}
		root.Append(e)
	}
	return Marshal(root, MarshalOptions{Declaration: true})
}

func withNamespaces(root *wml.Element) *wml.Element {
	used := map[string]bool{}
	root.Walk(func(e *wml.Element) bool {
		if i := strings.IndexByte(e.Name, ':'); i > 0 {
			used[e.Name[:i]] = true
		}
		for _, a := range e.Attrs {
			if i := strings.IndexByte(a.Name, ':'); i > 0 {
				used[a.Name[:i]] = true
			}
		}
		return true
	})
	var missing []wml.Attr
	for uri, prefix := range knownSpaces {
		if prefix == "xml" || !used[prefix] {
			continue
		}
		if _, ok := root.LookupAttr("xmlns:" + prefix); !ok {
			missing = append(missing, wml.Attr{Name: "xmlns:" + prefix, Value: uri})
		}
	}
	if len(missing) == 0 {
		return root
	}
	sortAttrs(missing)
	shallow := root.Shallow()
	shallow.Attrs = append(missing, shallow.Attrs...)
	shallow.Children = root.Children
	return shallow
}

func sortAttrs(attrs []wml.Attr) {
	for i := 1; i < len(attrs); i++ {
		for j := i; j > 0 && attrs[j].Name < attrs[j-1].Name; j-- {
			attrs[j], attrs[j-1] = attrs[j-1], attrs[j]
		}
	}
}

func writeElement(w *bytes.Buffer, e *wml.Element, depth int, indent string) {
	if indent != "" {
		writeIndent(w, depth, indent)
	}
	w.WriteString("<")
	w.WriteString(e.Name)
	for _, a := range e.Attrs {
		w.WriteString(" ")
		w.WriteString(a.Name)
		w.WriteString("=\"")
		w.WriteString(encoding.EscapeXMLAttr(a.Value))
		w.WriteString("\"")
	}

	if len(e.Children) == 0 && e.Text == "" {
		w.WriteString("/>")
		if indent != "" {
			w.WriteString("\n")
		}
		return
	}
	w.WriteString(">")
	if e.Text != "" {
		w.WriteString(encoding.EscapeXMLText(e.Text))
	}
	if len(e.Children) > 0 {
		if indent != "" {
			w.WriteString("\n")
		}
		for _, c := range e.Children {
			writeElement(w, c, depth+1, indent)
		}
		if indent != "" {
			writeIndent(w, depth, indent)
		}
	}
	w.WriteString("</")
	w.WriteString(e.Name)
	w.WriteString(">")
	if indent != "" {
		w.WriteString("\n")
	}
}

func writeIndent(w *bytes.Buffer, depth int, indent string) {
	for i := 0; i < depth; i++ {
		w.WriteString(indent)
	}
}
