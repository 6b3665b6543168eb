package consolidate

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/FocuswithJustin/redline/core/compare"
	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/wml"
)

// palette colors reviewers that did not pick one.
var palette = []string{"#1F77B4", "#FF7F0E", "#2CA02C", "#D62728", "#9467BD", "#8C564B", "#E377C2", "#17BECF"}

// fill returns the cell shading for a reviewer color: the color blended 75%
// toward white, as RRGGBB.
func fill(color string, index int) (string, error) {
	if color == "" {
		color = palette[index%len(palette)]
	}
	hex := color
	if hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return "", &errors.ValidationError{Field: "Color", Value: color, Message: "not a hex color: " + err.Error()}
	}
	tint := c.BlendRgb(colorful.Color{R: 1, G: 1, B: 1}, 0.75)
	return strings.ToUpper(tint.Hex()[1:]), nil
}

type notesKind struct {
	reference string
	note      string
	root      string
	part      func(*wml.Package) *wml.Part
	setPart   func(*wml.Package, *wml.Part)
}

var notesKinds = []notesKind{
	{
		reference: wml.FootnoteReference,
		note:      wml.Footnote,
		root:      wml.Footnotes,
		part:      func(p *wml.Package) *wml.Part { return p.Footnotes },
		setPart:   func(p *wml.Package, part *wml.Part) { p.Footnotes = part },
	},
	{
		reference: wml.EndnoteReference,
		note:      wml.Endnote,
		root:      wml.Endnotes,
		part:      func(p *wml.Package) *wml.Part { return p.Endnotes },
		setPart:   func(p *wml.Package, part *wml.Part) { p.Endnotes = part },
	},
}

// importNotes copies the notes el refers to from delta into the result
// under fresh ids.
func (c *consolidation) importNotes(delta *wml.Package, el *wml.Element) {
	for _, k := range notesKinds {
		for _, ref := range el.Descendants(k.reference) {
			from := k.part(delta)
			note := findNote(from, k.note, ref.Attr(wml.AttrID))
			to := k.part(c.result)
			if to == nil {
				to = &wml.Part{URI: from.URI, Root: from.Root.Shallow()}
				for _, n := range from.Root.ChildrenNamed(k.note) {
					if t := n.Attr(wml.AttrType); t != "" && t != "normal" {
						to.Root.Append(n.Clone())
					}
				}
				k.setPart(c.result, to)
			}
			copied := note.Clone()
			id := strconv.Itoa(nextNoteID(to, k.note, c.opts.Settings.StartingNoteID))
			copied.SetAttr(wml.AttrID, id)
			ref.SetAttr(wml.AttrID, id)
			importRels(delta, from, c.result, to, copied)
			to.Root.Append(copied)
		}
	}
}

func findNote(part *wml.Part, name, id string) *wml.Element {
	if part != nil && part.Root != nil {
		for _, n := range part.Root.ChildrenNamed(name) {
			if n.Attr(wml.AttrID) == id {
				return n
			}
		}
	}
	panic(errors.NewInconsistency("consolidate", "%s %s has no body", name, id))
}

func nextNoteID(part *wml.Part, name string, start int) int {
	next := start
	for _, n := range part.Root.ChildrenNamed(name) {
		if id, err := strconv.Atoi(n.Attr(wml.AttrID)); err == nil && id >= next {
			next = id + 1
		}
	}
	return next
}

// importRels points the relationship attributes of el, read from part from
// of fromPkg, at equivalent relationships of part to, adding them with their
// media when missing.
func importRels(fromPkg *wml.Package, from *wml.Part, toPkg *wml.Package, to *wml.Part, el *wml.Element) {
	el.Walk(func(e *wml.Element) bool {
		for i, a := range e.Attrs {
			if !isRelAttr(a.Name) || a.Value == "" {
				continue
			}
			rel, ok := from.Rel(a.Value)
			if !ok {
				panic(errors.NewInconsistency("consolidate", "relationship %s not found in %s", a.Value, from.URI))
			}
			target := rel.Target
			if !rel.External {
				if data, ok := fromPkg.Media[target]; ok {
					target = toPkg.AddMedia(target, data)
				}
			}
			if have, ok := to.Rel(a.Value); ok && have.Type == rel.Type && have.Target == target && have.External == rel.External {
				continue
			}
			e.Attrs[i].Value = to.AddRel(rel.Type, target, rel.External)
		}
		return true
	})
}

func isRelAttr(name string) bool {
	for _, n := range wml.RelAttrs {
		if n == name {
			return true
		}
	}
	return false
}

// finish strips identifiers, drops paragraph properties left empty and
// renumbers revision markers across the result.
func finish(pkg *wml.Package) {
	rev := 0
	for _, part := range []*wml.Part{pkg.Main, pkg.Footnotes, pkg.Endnotes} {
		if part == nil || part.Root == nil {
			continue
		}
		part.Root.Walk(func(e *wml.Element) bool {
			e.RemoveAttr(compare.UnidAttr)
			return true
		})
		part.Root.Walk(func(e *wml.Element) bool {
			switch e.Name {
			case wml.Ins, wml.Del:
				rev++
				e.SetAttr(wml.AttrID, strconv.Itoa(rev))
			case wml.P:
				e.RemoveChildren(func(c *wml.Element) bool {
					return c.Name == wml.PPr && len(c.Children) == 0 && len(c.Attrs) == 0
				})
			}
			return true
		})
	}
}
