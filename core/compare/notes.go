package compare

import (
	"strconv"

	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/wml"
)

// noteRef is a footnote or endnote reference written to the output.
type noteRef struct {
	el   *wml.Element
	atom *Atom
}

// noteKind describes footnotes or endnotes.
type noteKind struct {
	root      string
	note      string
	reference string
	part      func(*wml.Package) *wml.Part
	setPart   func(*wml.Package, *wml.Part)
}

var (
	footnoteKind = noteKind{
		root:      wml.Footnotes,
		note:      wml.Footnote,
		reference: wml.FootnoteReference,
		part:      func(p *wml.Package) *wml.Part { return p.Footnotes },
		setPart:   func(p *wml.Package, part *wml.Part) { p.Footnotes = part },
	}
	endnoteKind = noteKind{
		root:      wml.Endnotes,
		note:      wml.Endnote,
		reference: wml.EndnoteReference,
		part:      func(p *wml.Package) *wml.Part { return p.Endnotes },
		setPart:   func(p *wml.Package, part *wml.Part) { p.Endnotes = part },
	}
)

// rebuildNotes writes the notes part of kind for the references found in the
// rebuilt body. Equal references compare their notes; deleted and inserted
// references carry their whole note with the same status. Notes are numbered
// from StartingNoteID in reference order; separator notes are kept.
func (c *comparison) rebuildNotes(kind noteKind, refs []noteRef) {
	beforePart, afterPart := kind.part(c.before), kind.part(c.after)
	var own []noteRef
	for _, ref := range refs {
		if ref.el.Name == kind.reference {
			own = append(own, ref)
		}
	}
	if len(own) == 0 && beforePart == nil {
		return
	}

	shellPart := beforePart
	if shellPart == nil {
		shellPart = afterPart
	}
	if shellPart == nil || shellPart.Root == nil {
		panic(errors.NewInconsistency("notes", "%s referenced without a notes part", kind.note))
	}
	out := kind.part(c.result)
	if out == nil {
		out = &wml.Part{URI: shellPart.URI}
		kind.setPart(c.result, out)
	}
	root := shellPart.Root.Shallow()
	next := c.e.settings.StartingNoteID
	for _, n := range shellPart.Root.ChildrenNamed(kind.note) {
		if t := n.Attr(wml.AttrType); t == "" || t == "normal" {
			continue
		}
		root.Append(n.Clone())
		if id, err := strconv.Atoi(n.Attr(wml.AttrID)); err == nil && id >= next {
			next = id + 1
		}
	}
	if afterPart != nil {
		c.rb.relocators[afterPart] = newRelocator(c.after, afterPart, c.result, out)
	}

	for _, ref := range own {
		var note *wml.Element
		switch ref.atom.Status {
		case Equal:
			before := findNote(kind, beforePart, ref.atom.Before.Content.Attr(wml.AttrID))
			after := findNote(kind, afterPart, ref.atom.Content.Attr(wml.AttrID))
			note = c.compareNote(before, after, beforePart, afterPart)
		case Deleted:
			note = c.wholeNote(findNote(kind, beforePart, ref.atom.Content.Attr(wml.AttrID)), beforePart, Deleted)
		case Inserted:
			note = c.wholeNote(findNote(kind, afterPart, ref.atom.Content.Attr(wml.AttrID)), afterPart, Inserted)
		}
		id := strconv.Itoa(next)
		next++
		note.SetAttr(wml.AttrID, id)
		ref.el.SetAttr(wml.AttrID, id)
		root.Append(note)
	}
	out.Root = root
}

func findNote(kind noteKind, part *wml.Part, id string) *wml.Element {
	if part != nil && part.Root != nil {
		for _, n := range part.Root.ChildrenNamed(kind.note) {
			if n.Attr(wml.AttrID) == id {
				return n
			}
		}
	}
	panic(errors.NewInconsistency("notes", "%s %s has no body", kind.note, id))
}

// compareNote runs the whole engine on one pair of notes.
func (c *comparison) compareNote(before, after *wml.Element, beforePart, afterPart *wml.Part) *wml.Element {
	left := c.e.atomize(before, source{pkg: c.before, part: beforePart})
	right := c.e.atomize(after, source{pkg: c.after, part: afterPart})
	atoms := flatten(c.e.correlate(c.e.units(left), c.e.units(right)))
	c.e.resolveAncestors(atoms)
	return c.rb.splice(before, beforePart, c.rb.children(atoms, 0))
}

// wholeNote rebuilds a note with all of its content marked status.
func (c *comparison) wholeNote(note *wml.Element, part *wml.Part, status Status) *wml.Element {
	pkg := c.before
	if status == Inserted {
		pkg = c.after
	}
	atoms := c.e.atomize(note, source{pkg: pkg, part: part})
	for _, a := range atoms {
		a.Status = status
		a.resolved = append([]string(nil), a.unids...)
	}
	return c.rb.splice(note, part, c.rb.children(atoms, 0))
}
