package compare

import (
	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/wml"
)

// relocator copies the relationships that content taken from one part
// refers to into another part, together with the media they target.
type relocator struct {
	from    *wml.Part
	fromPkg *wml.Package
	to      *wml.Part
	toPkg   *wml.Package
	ids     map[string]string
}

func newRelocator(fromPkg *wml.Package, from *wml.Part, toPkg *wml.Package, to *wml.Part) *relocator {
	return &relocator{from: from, fromPkg: fromPkg, to: to, toPkg: toPkg, ids: map[string]string{}}
}

// apply rewrites relationship attributes of el, and of its descendants when
// deep is set.
func (r *relocator) apply(el *wml.Element, deep bool) {
	if !deep {
		r.rewrite(el)
		return
	}
	el.Walk(func(d *wml.Element) bool {
		r.rewrite(d)
		return true
	})
}

func (r *relocator) rewrite(el *wml.Element) {
	for i, a := range el.Attrs {
		if isRelAttr(a.Name) && a.Value != "" {
			el.Attrs[i].Value = r.move(a.Value)
		}
	}
}

func (r *relocator) move(id string) string {
	if moved, ok := r.ids[id]; ok {
		return moved
	}
	rel, ok := r.from.Rel(id)
	if !ok {
		panic(errors.NewInconsistency("relocate", "relationship %s not found in %s", id, r.from.URI))
	}
	target := rel.Target
	if !rel.External {
		if data, ok := r.fromPkg.Media[target]; ok {
			target = r.toPkg.AddMedia(target, data)
		}
	}
	moved := r.to.AddRel(rel.Type, target, rel.External)
	r.ids[id] = moved
	return moved
}
