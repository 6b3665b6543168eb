package compare

import (
	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/wml"
)

// Attributes the engine adds to working copies. Hash attributes never leave
// the engine; UnidAttr is kept on output only when identifiers are retained.
const (
	UnidAttr           = "rl:Unid"
	hashAttr           = "rl:Hash"
	correlatedHashAttr = "rl:CorrelatedHash"
	structureHashAttr  = "rl:StructureHash"
)

// prepare returns a working copy of pkg: unsupported content is rejected,
// ignorable markers are removed, every paragraph gets a w:pPr and every
// element an identifier. Identifiers in taken, or repeated within pkg, are
// replaced.
func (e *engine) prepare(pkg *wml.Package, taken map[string]bool) (*wml.Package, error) {
	if pkg == nil || pkg.Body() == nil {
		return nil, errors.NewValidation("document", "package has no w:body")
	}
	c := pkg.Clone()
	seen := map[string]bool{}
	for _, part := range parts(c) {
		if err := e.prepareElement(part.Root, taken, seen); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (e *engine) prepareElement(el *wml.Element, taken, seen map[string]bool) error {
	if d, ok := elementKinds[el.Name]; ok && d.kind == kindUnsupported {
		return &errors.UnsupportedError{
			Feature: el.Name,
			Reason:  "content cannot be compared",
			Unid:    el.Attr(UnidAttr),
		}
	}
	el.RemoveChildren(func(c *wml.Element) bool {
		d, ok := elementKinds[c.Name]
		return ok && d.kind == kindIgnorable
	})
	if el.Name == wml.P && el.Child(wml.PPr) == nil {
		el.Prepend(wml.New(wml.PPr))
	}
	id := el.Attr(UnidAttr)
	if id == "" || taken[id] || seen[id] {
		id = e.newUnid()
		el.SetAttr(UnidAttr, id)
	}
	seen[id] = true
	for _, c := range el.Children {
		if err := e.prepareElement(c, taken, seen); err != nil {
			return err
		}
	}
	return nil
}

// identifiers returns the set of identifiers used in pkg.
func identifiers(pkg *wml.Package) map[string]bool {
	ids := map[string]bool{}
	for _, part := range parts(pkg) {
		part.Root.Walk(func(el *wml.Element) bool {
			if id := el.Attr(UnidAttr); id != "" {
				ids[id] = true
			}
			return true
		})
	}
	return ids
}

// stripAttrs removes engine attributes from el and its descendants.
func stripAttrs(el *wml.Element, keepUnid bool) {
	el.Walk(func(d *wml.Element) bool {
		if !keepUnid {
			d.RemoveAttr(UnidAttr)
		}
		d.RemoveAttr(hashAttr)
		d.RemoveAttr(correlatedHashAttr)
		d.RemoveAttr(structureHashAttr)
		return true
	})
}
