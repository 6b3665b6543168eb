package compare

import (
	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/wml"
)

// flatten turns correlated sequences into the classified atom list. Equal
// atoms come from the revised side and point at their original counterpart.
func flatten(seqs []*Sequence) []*Atom {
	var out []*Atom
	for _, s := range seqs {
		switch s.Status {
		case Equal:
			l, r := atomsOf(s.Left), atomsOf(s.Right)
			if len(l) != len(r) {
				panic(errors.NewInconsistency("flatten", "equal run pairs %d atoms with %d", len(l), len(r)))
			}
			for k, a := range r {
				a.Status = Equal
				a.Before = l[k]
				l[k].Status = Equal
				out = append(out, a)
			}
		case Deleted:
			for _, a := range atomsOf(s.Left) {
				a.Status = Deleted
				out = append(out, a)
			}
		case Inserted:
			for _, a := range atomsOf(s.Right) {
				a.Status = Inserted
				out = append(out, a)
			}
		default:
			panic(errors.NewInconsistency("flatten", "sequence left as %s", s.Status))
		}
	}
	return out
}

func atomsOf(units []*Unit) []*Atom {
	var out []*Atom
	for _, u := range units {
		out = append(out, u.Descendants()...)
	}
	return out
}

// resolveAncestors fixes the identifier chain every atom is rebuilt under.
//
// Equal atoms use their original chain. Inserted atoms inherit the original
// identifiers of revised elements that Equal content maps onto. Paragraph
// marks then pull the atoms since the previous mark into their paragraph:
// first for body paragraphs, then for paragraphs inside text boxes.
func (e *engine) resolveAncestors(atoms []*Atom) {
	mapped := map[string]string{}
	for _, a := range atoms {
		if a.Status != Equal {
			continue
		}
		b := a.Before
		if len(a.Ancestors) != len(b.Ancestors) {
			continue
		}
		for i, el := range a.Ancestors {
			if el.Name != b.Ancestors[i].Name {
				break
			}
			if _, ok := mapped[a.unids[i]]; !ok {
				mapped[a.unids[i]] = b.unids[i]
			}
		}
	}

	for _, a := range atoms {
		a.resolved = append([]string(nil), a.origin().unids...)
		if a.Status != Inserted {
			continue
		}
		for i, id := range a.resolved {
			if m, ok := mapped[id]; ok {
				a.resolved[i] = m
			}
		}
	}

	e.claimParagraphs(atoms)
	propagateMarks(atoms, false)
	propagateMarks(atoms, true)
}

// claimParagraphs gives each paragraph identifier to a single mark. An
// inserted mark that lands on a paragraph already ended by another mark
// starts a paragraph of its own.
func (e *engine) claimParagraphs(atoms []*Atom) {
	claimed := map[string]bool{}
	for _, a := range atoms {
		if a.IsMark() && a.Status != Inserted {
			claimed[a.resolved[len(a.resolved)-1]] = true
		}
	}
	for _, a := range atoms {
		if !a.IsMark() || a.Status != Inserted {
			continue
		}
		k := len(a.resolved) - 1
		if claimed[a.resolved[k]] {
			a.resolved[k] = e.adopt(a.Ancestors[k], a.Part)
		}
		claimed[a.resolved[k]] = true
	}
}

// propagateMarks copies each mark's paragraph identifiers onto the atoms
// between the previous mark and itself, where their element names agree.
// Body marks rewrite the chain up to the paragraph; text-box marks rewrite
// it from below the text-box content down to the inner paragraph.
func propagateMarks(atoms []*Atom, textbox bool) {
	start := 0
	for k, m := range atoms {
		if !m.IsMark() || m.inTextbox() != textbox {
			continue
		}
		chain := m.origin().Ancestors
		lo, hi := 0, len(chain)-1
		if textbox {
			lo = lastIndex(chain, wml.TxbxContent) + 1
		}
		for _, a := range atoms[start:k] {
			ac := a.origin().Ancestors
			if len(ac) <= hi || !sameNames(ac, chain, lo, hi) {
				continue
			}
			if textbox && a.resolved[lo-1] != m.resolved[lo-1] {
				continue
			}
			copy(a.resolved[lo:hi+1], m.resolved[lo:hi+1])
		}
		start = k + 1
	}
}

func sameNames(a, b []*wml.Element, lo, hi int) bool {
	for i := lo; i <= hi; i++ {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}

func lastIndex(chain []*wml.Element, name string) int {
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Name == name {
			return i
		}
	}
	return -1
}
