package compare

import (
	"unicode/utf8"

	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/wml"
)

// Status is the correlation status of an atom or sequence.
type Status int

const (
	// Unknown sequences still need to be decomposed.
	Unknown Status = iota
	// Equal content is present on both sides.
	Equal
	// Inserted content is present only in the revised document.
	Inserted
	// Deleted content is present only in the original document.
	Deleted
)

func (s Status) String() string {
	switch s {
	case Equal:
		return "equal"
	case Inserted:
		return "inserted"
	case Deleted:
		return "deleted"
	}
	return "unknown"
}

// Atom is one minimal content unit: a single character of text, one non-text
// leaf, or the mark that ends a paragraph.
type Atom struct {
	// Content is the leaf element. Text atoms hold a one-character copy of
	// their w:t or w:delText.
	Content *wml.Element

	// Ancestors is the chain from the top-level block down to the parent of
	// Content.
	Ancestors []*wml.Element

	// Part is the document part the atom was read from.
	Part *wml.Part

	Status Status
	Hash   string

	// Before is the counterpart of an Equal atom in the original document.
	Before *Atom

	unids    []string
	groups   []*wml.Element
	resolved []string
}

// IsMark reports whether the atom is a paragraph mark.
func (a *Atom) IsMark() bool {
	return a.Content.Name == wml.PPr
}

// String renders the atom for diagnostics: the character for text, a pilcrow
// for paragraph marks and the bracketed element name otherwise.
func (a *Atom) String() string {
	switch {
	case isTextName(a.Content.Name):
		return a.Content.Text
	case a.IsMark():
		return "¶"
	}
	return "[" + a.Content.Local() + "]"
}

// origin returns the atom whose content and chain are used on output: the
// original-document counterpart for Equal atoms, the atom itself otherwise.
func (a *Atom) origin() *Atom {
	if a.Status == Equal && a.Before != nil {
		return a.Before
	}
	return a
}

func (a *Atom) inTextbox() bool {
	for _, el := range a.Ancestors {
		if el.Name == wml.TxbxContent {
			return true
		}
	}
	return false
}

// char returns the character of a text atom.
func (a *Atom) char() (rune, bool) {
	if !isTextName(a.Content.Name) || a.Content.Text == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(a.Content.Text)
	return r, true
}

// atomizer flattens a subtree into atoms.
type atomizer struct {
	e     *engine
	src   source
	atoms []*Atom
}

// atomize returns the atoms of root's content in document order. Chains start
// below root.
func (e *engine) atomize(root *wml.Element, src source) []*Atom {
	z := &atomizer{e: e, src: src}
	z.walk(root, nil, false)
	return z.atoms
}

// walk visits the children of el. Inside a shape only the path to text-box
// content is visited; the rest of the shape is carried through as is.
func (z *atomizer) walk(el *wml.Element, chain []*wml.Element, inShape bool) {
	for _, c := range el.Children {
		if inShape && c.Name != wml.TxbxContent && !c.Has(wml.TxbxContent) {
			continue
		}
		d := kindOf(c)
		switch d.kind {
		case kindParagraph:
			z.e.contentful[c] = true
			next := extend(chain, c)
			z.walk(c, next, false)
			mark := c.Child(wml.PPr)
			if mark == nil {
				panic(errors.NewInconsistency("atomize", "paragraph %s has no properties", c.Attr(UnidAttr)))
			}
			z.e.contentful[mark] = true
			z.emit(mark, next)
		case kindBlock:
			z.e.contentful[c] = true
			z.walk(c, extend(chain, c), false)
		case kindRun, kindTransparent:
			z.e.contentful[c] = true
			z.walk(c, extend(chain, c), inShape)
		case kindShape:
			z.e.contentful[c] = true
			z.walk(c, extend(chain, c), true)
		case kindText:
			z.e.contentful[c] = true
			for _, r := range c.Text {
				z.emit(wml.NewText(c.Name, string(r)), chain)
			}
		case kindLeaf:
			z.e.contentful[c] = true
			z.emit(c, chain)
		}
	}
}

func (z *atomizer) emit(content *wml.Element, chain []*wml.Element) {
	a := &Atom{
		Content:   content,
		Ancestors: chain,
		Part:      z.src.part,
		Hash:      z.e.atomHash(content, z.src),
		unids:     make([]string, len(chain)),
	}
	for i, el := range chain {
		id := el.Attr(UnidAttr)
		if id == "" {
			panic(errors.NewInconsistency("atomize", "%s has no identifier", el.Name))
		}
		a.unids[i] = id
		if isGroup(el) {
			a.groups = append(a.groups, el)
		}
	}
	z.atoms = append(z.atoms, a)
}

func extend(chain []*wml.Element, el *wml.Element) []*wml.Element {
	next := make([]*wml.Element, len(chain)+1)
	copy(next, chain)
	next[len(chain)] = el
	return next
}
