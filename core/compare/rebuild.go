package compare

import (
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/wml"
)

// rebuilder folds classified atoms back into a tree.
type rebuilder struct {
	e *engine

	// relocators move relationships of revised-document parts into the
	// result; parts of the original document have none.
	relocators map[*wml.Part]*relocator

	// refs collects note references written to the output, when set.
	refs    []noteRef
	collect bool
}

// children folds atoms into the elements found at depth of their chains.
// Atoms whose chain ends above depth are leaves at this level.
func (b *rebuilder) children(atoms []*Atom, depth int) []*wml.Element {
	var out []*wml.Element
	for i := 0; i < len(atoms); {
		a := atoms[i]
		j := i + 1
		if len(a.resolved) <= depth {
			for j < len(atoms) && len(atoms[j].resolved) <= depth {
				j++
			}
			out = append(out, b.leaves(atoms[i:j])...)
			i = j
			continue
		}
		id := a.resolved[depth]
		for j < len(atoms) && len(atoms[j].resolved) > depth && atoms[j].resolved[depth] == id {
			j++
		}
		out = append(out, b.element(id, atoms[i:j], depth+1)...)
		i = j
	}
	return out
}

// element rebuilds the element registered under id around atoms.
func (b *rebuilder) element(id string, atoms []*Atom, depth int) []*wml.Element {
	shell, ok := b.e.shells[id]
	if !ok {
		panic(errors.NewInconsistency("reassemble", "no element for identifier %s", id))
	}
	origin := b.e.origins[id]
	switch shell.Name {
	case wml.P:
		return []*wml.Element{b.paragraph(shell, origin, atoms, depth)}
	case wml.R:
		return b.runs(shell, origin, atoms, depth)
	case wml.Tr:
		return []*wml.Element{b.row(shell, origin, atoms, depth)}
	}
	return []*wml.Element{b.splice(shell, origin, b.children(atoms, depth))}
}

// splice copies shell with content in place of its content children. Other
// children are carried over, and content goes where the first content child
// was.
func (b *rebuilder) splice(shell *wml.Element, origin *wml.Part, content []*wml.Element) *wml.Element {
	el := shell.Shallow()
	b.relocate(origin, el, false)
	placed := false
	for _, c := range shell.Children {
		if !b.e.contentful[c] {
			cc := c.Clone()
			b.relocate(origin, cc, true)
			el.Append(cc)
			continue
		}
		if !placed {
			el.Append(content...)
			placed = true
		}
	}
	if !placed {
		if k := len(el.Children) - 1; k >= 0 && el.Children[k].Name == wml.SectPr {
			sectPr := el.Children[k]
			el.Children = append(append(el.Children[:k], content...), sectPr)
		} else {
			el.Append(content...)
		}
	}
	return el
}

// paragraph rebuilds a w:p. Its properties come from the mark atom and go
// first; a deleted or inserted mark is flagged in the mark's run properties.
func (b *rebuilder) paragraph(shell *wml.Element, origin *wml.Part, atoms []*Atom, depth int) *wml.Element {
	var mark *Atom
	rest := make([]*Atom, 0, len(atoms))
	for _, a := range atoms {
		if len(a.resolved) == depth && a.IsMark() {
			mark = a
			continue
		}
		rest = append(rest, a)
	}
	el := b.splice(shell, origin, b.children(rest, depth))
	var pPr *wml.Element
	switch {
	case mark != nil:
		pPr = b.leaf(mark)
		if mark.Status == Deleted || mark.Status == Inserted {
			rPr := pPr.Child(wml.RPr)
			if rPr == nil {
				rPr = wml.New(wml.RPr)
				pPr.Append(rPr)
			}
			rPr.Append(b.revision(mark.Status))
		}
	case shell.Child(wml.PPr) != nil:
		pPr = shell.Child(wml.PPr).Clone()
		b.relocate(origin, pPr, true)
	default:
		pPr = wml.New(wml.PPr)
	}
	return el.Prepend(pPr)
}

// runs rebuilds a w:r, split wherever the status of its content changes.
// Deleted runs are wrapped in w:del with their text renamed, inserted runs in
// w:ins.
func (b *rebuilder) runs(shell *wml.Element, origin *wml.Part, atoms []*Atom, depth int) []*wml.Element {
	var out []*wml.Element
	for _, seg := range runSegments(atoms, depth) {
		run := b.splice(shell, origin, b.children(atoms[seg.lo:seg.hi], depth))
		switch seg.status {
		case Deleted:
			for _, c := range run.Children {
				switch c.Name {
				case wml.T:
					c.Name = wml.DelText
				case wml.InstrText:
					c.Name = wml.DelInstr
				}
			}
			out = append(out, b.revision(Deleted).Append(run))
		case Inserted:
			out = append(out, b.revision(Inserted).Append(run))
		default:
			out = append(out, run)
		}
	}
	return out
}

// segment is a slice of a run's atoms rebuilt as one run.
type segment struct {
	lo, hi int
	status Status
}

// runSegments cuts the atoms of one run into segments of equal status.
// Text-box content nested in the run is kept together; it takes the status
// all of its atoms share, or Equal when they differ, in which case the
// revisions are marked inside the text box. Adjacent segments of one status
// are merged.
func runSegments(atoms []*Atom, depth int) []segment {
	var segs []segment
	for i := 0; i < len(atoms); {
		nested := len(atoms[i].resolved) > depth
		status := atoms[i].Status
		j := i + 1
		for j < len(atoms) && (len(atoms[j].resolved) > depth) == nested {
			if atoms[j].Status != status {
				if !nested {
					break
				}
				status = Equal
			}
			j++
		}
		if n := len(segs); n > 0 && segs[n-1].status == status {
			segs[n-1].hi = j
		} else {
			segs = append(segs, segment{lo: i, hi: j, status: status})
		}
		i = j
	}
	return segs
}

// row rebuilds a w:tr and flags it when all of its content was deleted or
// inserted.
func (b *rebuilder) row(shell *wml.Element, origin *wml.Part, atoms []*Atom, depth int) *wml.Element {
	el := b.splice(shell, origin, b.children(atoms, depth))
	status := atoms[0].Status
	for _, a := range atoms {
		if a.Status != status {
			return el
		}
	}
	if status != Deleted && status != Inserted {
		return el
	}
	trPr := el.Child(wml.TrPr)
	if trPr == nil {
		trPr = wml.New(wml.TrPr)
		if len(el.Children) > 0 && el.Children[0].Name == "w:tblPrEx" {
			el.Children = append(el.Children[:1], append([]*wml.Element{trPr}, el.Children[1:]...)...)
		} else {
			el.Prepend(trPr)
		}
	}
	trPr.Append(b.revision(status))
	return el
}

// leaves writes leaf atoms. Consecutive characters of one text element name
// and status are merged back into a single element.
func (b *rebuilder) leaves(atoms []*Atom) []*wml.Element {
	var out []*wml.Element
	var last *wml.Element
	var lastStatus Status
	for _, a := range atoms {
		content := a.origin().Content
		if isTextName(content.Name) {
			if last != nil && last.Name == content.Name && lastStatus == a.Status {
				last.Text += content.Text
				continue
			}
			last = wml.NewText(content.Name, content.Text)
			lastStatus = a.Status
			out = append(out, last)
			continue
		}
		last = nil
		out = append(out, b.leaf(a))
	}
	for _, el := range out {
		if isTextName(el.Name) && strings.TrimSpace(el.Text) != el.Text {
			el.SetAttr(wml.AttrSpace, "preserve")
		}
	}
	return out
}

// leaf copies a non-text atom, moving relationships it references.
func (b *rebuilder) leaf(a *Atom) *wml.Element {
	src := a.origin()
	el := src.Content.Clone()
	b.relocate(src.Part, el, true)
	if b.collect && (el.Name == wml.FootnoteReference || el.Name == wml.EndnoteReference) {
		b.refs = append(b.refs, noteRef{el: el, atom: a})
	}
	return el
}

// revision creates a w:ins or w:del marker.
func (b *rebuilder) revision(status Status) *wml.Element {
	name := wml.Ins
	if status == Deleted {
		name = wml.Del
	}
	b.e.revision++
	el := wml.New(name)
	el.SetAttr(wml.AttrID, strconv.Itoa(b.e.revision))
	el.SetAttr(wml.AttrAuthor, b.e.settings.Author)
	if !b.e.settings.Date.IsZero() {
		el.SetAttr(wml.AttrDate, b.e.settings.Date.UTC().Format(time.RFC3339))
	}
	return el
}

func (b *rebuilder) relocate(from *wml.Part, el *wml.Element, deep bool) {
	if r := b.relocators[from]; r != nil {
		r.apply(el, deep)
	}
}
