package compare

import (
	"strings"
	"unicode"

	"github.com/FocuswithJustin/redline/core/wml"
)

// UnitKind tags the variants of a comparison unit.
type UnitKind int

const (
	// UnitWord is a run of atoms.
	UnitWord UnitKind = iota
	UnitParagraph
	UnitTable
	UnitRow
	UnitCell
	UnitTextbox
)

func (k UnitKind) String() string {
	switch k {
	case UnitWord:
		return "word"
	case UnitParagraph:
		return "paragraph"
	case UnitTable:
		return "table"
	case UnitRow:
		return "row"
	case UnitCell:
		return "cell"
	case UnitTextbox:
		return "textbox"
	}
	return "unit"
}

// Unit is a comparison unit: a word of atoms, or a group mirroring a
// paragraph, table, row, cell or text box with its child units.
type Unit struct {
	Kind UnitKind

	// Atoms holds the atoms of a word.
	Atoms []*Atom

	// Children holds the units of a group, and Element the source element.
	Children []*Unit
	Element  *wml.Element

	Hash           string
	CorrelatedHash string
	StructureHash  string

	all []*Atom
}

// Descendants returns every atom below the unit in document order.
func (u *Unit) Descendants() []*Atom {
	if u.Kind == UnitWord {
		return u.Atoms
	}
	if u.all == nil {
		for _, c := range u.Children {
			u.all = append(u.all, c.Descendants()...)
		}
	}
	return u.all
}

// Text renders the unit's atoms for diagnostics.
func (u *Unit) Text() string {
	var b strings.Builder
	for _, a := range u.Descendants() {
		b.WriteString(a.String())
	}
	return b.String()
}

func (u *Unit) isMark() bool {
	return u.Kind == UnitWord && len(u.Atoms) == 1 && u.Atoms[0].IsMark()
}

func (u *Unit) isSeparator(separators map[rune]bool) bool {
	if u.Kind != UnitWord || len(u.Atoms) != 1 {
		return false
	}
	r, ok := u.Atoms[0].char()
	return ok && separators[r]
}

// isBreak reports a lone word-break leaf such as a tab. Paragraph marks are
// not breaks.
func (u *Unit) isBreak() bool {
	if u.Kind != UnitWord || len(u.Atoms) != 1 {
		return false
	}
	name := u.Atoms[0].Content.Name
	return name != wml.PPr && !isTextName(name) && isWordBreak(name)
}

// groupAt returns the group element at level for the unit's first atom.
func (u *Unit) groupAt(level int) *wml.Element {
	atoms := u.Descendants()
	if len(atoms) == 0 || level >= len(atoms[0].groups) {
		return nil
	}
	return atoms[0].groups[level]
}

// words merges atoms into words. Paragraph marks, word-break leaves,
// separators and ideographs stand alone; '.' and ',' stay inside a word when a
// digit is next to them. A word never crosses a group boundary.
func (e *engine) words(atoms []*Atom) []*Unit {
	var out []*Unit
	var cur *Unit
	key := ""
	for i, a := range atoms {
		k := groupKey(a)
		if e.standsAlone(atoms, i) {
			out = append(out, &Unit{Kind: UnitWord, Atoms: []*Atom{a}})
			cur = nil
			continue
		}
		if cur == nil || k != key {
			cur = &Unit{Kind: UnitWord}
			key = k
			out = append(out, cur)
		}
		cur.Atoms = append(cur.Atoms, a)
	}
	for _, w := range out {
		hashes := make([]string, len(w.Atoms))
		for i, a := range w.Atoms {
			hashes[i] = a.Hash
		}
		w.Hash = strings.Join(hashes, "")
	}
	return out
}

func (e *engine) standsAlone(atoms []*Atom, i int) bool {
	a := atoms[i]
	r, ok := a.char()
	if !ok {
		return a.IsMark() || isWordBreak(a.Content.Name)
	}
	if r == '.' || r == ',' {
		return !digitAt(atoms, i-1) && !digitAt(atoms, i+1)
	}
	return e.separators[r] || isIdeograph(r)
}

func digitAt(atoms []*Atom, i int) bool {
	if i < 0 || i >= len(atoms) {
		return false
	}
	r, ok := atoms[i].char()
	return ok && unicode.IsDigit(r)
}

func isIdeograph(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana)
}

func groupKey(a *Atom) string {
	var b strings.Builder
	for _, g := range a.groups {
		b.WriteString(g.Attr(UnidAttr))
		b.WriteByte('/')
	}
	return b.String()
}

// group folds words into nested groups following their group ancestors.
func group(units []*Unit, level int) []*Unit {
	var out []*Unit
	for i := 0; i < len(units); {
		el := units[i].groupAt(level)
		if el == nil {
			out = append(out, units[i])
			i++
			continue
		}
		j := i + 1
		for j < len(units) && units[j].groupAt(level) == el {
			j++
		}
		out = append(out, &Unit{
			Kind:           elementKinds[el.Name].group,
			Children:       group(units[i:j], level+1),
			Element:        el,
			Hash:           el.Attr(hashAttr),
			CorrelatedHash: el.Attr(correlatedHashAttr),
			StructureHash:  el.Attr(structureHashAttr),
		})
		i = j
	}
	return out
}

// units turns atoms into the nested units the correlation works on.
func (e *engine) units(atoms []*Atom) []*Unit {
	return group(e.words(atoms), 0)
}
