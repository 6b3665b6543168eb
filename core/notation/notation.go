// Package notation parses a compact text notation for element trees.
//
// A document is a sequence of nodes. A node is a name, optional attributes in
// brackets, optional quoted text and optional children in braces:
//
//	p { pPr { pStyle[val="Heading1"] } r { t "Hello world" } }
//	tbl { tr { tc { p { r { t "cell" } } } } }
//
// Names and attribute names without a prefix are placed in the "w" namespace,
// so "p" means "w:p" and "val" means "w:val". Lines starting with # are comments.
package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/wml"
)

// DefaultPrefix is applied to unprefixed element and attribute names.
const DefaultPrefix = "w"

type grammarFile struct {
	Nodes []*grammarNode `parser:"@@*"`
}

type grammarNode struct {
	Name     string         `parser:"@Name"`
	Attrs    []*grammarAttr `parser:"( \"[\" @@* \"]\" )?"`
	Text     *string        `parser:"@String?"`
	Children []*grammarNode `parser:"( \"{\" @@* \"}\" )?"`
}

type grammarAttr struct {
	Name  string `parser:"@Name \"=\""`
	Value string `parser:"@String"`
}

var notationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Name", Pattern: `[A-Za-z_][A-Za-z0-9_.\-]*(:[A-Za-z_][A-Za-z0-9_.\-]*)?`},
	{Name: "Punct", Pattern: `[{}\[\]=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var notationParser = participle.MustBuild[grammarFile](
	participle.Lexer(notationLexer),
	participle.Unquote("String"),
	participle.Elide("Whitespace", "Comment"),
)

// Parse parses notation source into a list of top-level elements.
func Parse(src string) ([]*wml.Element, error) {
	parsed, err := notationParser.ParseString("", src)
	if err != nil {
		return nil, &errors.ParseError{Format: "notation", Message: err.Error(), Err: err}
	}
	out := make([]*wml.Element, 0, len(parsed.Nodes))
	for _, n := range parsed.Nodes {
		out = append(out, build(n))
	}
	return out, nil
}

// MustParse is like Parse but panics on error. It is meant for tests and
// package-level fixtures.
func MustParse(src string) []*wml.Element {
	out, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return out
}

// Document parses body content and wraps it in w:document/w:body.
func Document(src string) (*wml.Package, error) {
	nodes, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return wml.NewPackage(wml.New(wml.Document, wml.New(wml.Body, nodes...))), nil
}

// MustDocument is like Document but panics on error.
func MustDocument(src string) *wml.Package {
	pkg, err := Document(src)
	if err != nil {
		panic(err)
	}
	return pkg
}

// Notes parses note bodies into a w:footnotes or w:endnotes part root. Each
// top-level node must be a w:footnote or w:endnote element.
func Notes(rootName, src string) (*wml.Part, error) {
	nodes, err := Parse(src)
	if err != nil {
		return nil, err
	}
	uri := "word/footnotes.xml"
	if rootName == wml.Endnotes {
		uri = "word/endnotes.xml"
	}
	return &wml.Part{URI: uri, Root: wml.New(rootName, nodes...)}, nil
}

func build(n *grammarNode) *wml.Element {
	e := &wml.Element{Name: qualify(n.Name)}
	for _, a := range n.Attrs {
		e.SetAttr(qualify(a.Name), a.Value)
	}
	if n.Text != nil {
		e.Text = *n.Text
		if e.Name == wml.T && strings.TrimSpace(e.Text) != e.Text {
			e.SetAttr(wml.AttrSpace, "preserve")
		}
	}
	for _, c := range n.Children {
		e.Children = append(e.Children, build(c))
	}
	return e
}

func qualify(name string) string {
	if strings.Contains(name, ":") || name == "xmlns" {
		return name
	}
	return DefaultPrefix + ":" + name
}

// Format renders elements back into notation. Names in the default namespace
// are written without their prefix.
func Format(elems ...*wml.Element) string {
	var b strings.Builder
	for i, e := range elems {
		if i > 0 {
			b.WriteString(" ")
		}
		format(&b, e)
	}
	return b.String()
}

func format(b *strings.Builder, e *wml.Element) {
	b.WriteString(unqualify(e.Name))
	if len(e.Attrs) > 0 {
		b.WriteString("[")
		for i, a := range e.Attrs {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(b, "%s=%s", unqualify(a.Name), strconv.Quote(a.Value))
		}
		b.WriteString("]")
	}
	if e.Text != "" {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(e.Text))
	}
	if len(e.Children) > 0 {
		b.WriteString(" { ")
		for i, c := range e.Children {
			if i > 0 {
				b.WriteString(" ")
			}
			format(b, c)
		}
		b.WriteString(" }")
	}
}

func unqualify(name string) string {
	return strings.TrimPrefix(name, DefaultPrefix+":")
}
