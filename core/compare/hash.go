package compare

import (
	"strconv"
	"strings"

	"github.com/FocuswithJustin/redline/core/encoding"
	"github.com/FocuswithJustin/redline/core/wml"
	"github.com/FocuswithJustin/redline/core/xml"
)

// source identifies where content was read from, so relationship ids can be
// resolved.
type source struct {
	pkg  *wml.Package
	part *wml.Part
}

// hashPackage writes content, correlated and structure hashes onto every
// group element of pkg. Correlated hashes are taken from a copy with tracked
// revisions accepted (accept) or rejected.
func (e *engine) hashPackage(pkg *wml.Package, accept bool) {
	for _, part := range parts(pkg) {
		src := source{pkg: pkg, part: part}
		part.Root.Walk(func(el *wml.Element) bool {
			if isGroup(el) {
				el.SetAttr(hashAttr, e.contentHash(el, src))
			}
			switch el.Name {
			case wml.Tbl, wml.Tr, wml.Tc:
				el.SetAttr(structureHashAttr, e.structureHash(el))
			}
			return true
		})

		correlated := map[string]string{}
		resolveRevisions(part.Root, accept).Walk(func(el *wml.Element) bool {
			if isGroup(el) {
				correlated[el.Attr(UnidAttr)] = e.contentHash(el, src)
			}
			return true
		})
		part.Root.Walk(func(el *wml.Element) bool {
			if h, ok := correlated[el.Attr(UnidAttr)]; ok && isGroup(el) {
				el.SetAttr(correlatedHashAttr, h)
			}
			return true
		})
	}
}

// contentHash digests the canonical serialization of a normalized copy of el.
func (e *engine) contentHash(el *wml.Element, src source) string {
	return e.digest(xml.Marshal(e.normalize(el, src), xml.MarshalOptions{}))
}

// atomHash digests a single atom. Paragraph marks hash alike whatever their
// properties, so formatting-only changes do not register.
func (e *engine) atomHash(content *wml.Element, src source) string {
	switch {
	case content.Name == wml.PPr:
		return e.digestString(wml.PPr)
	case isTextName(content.Name):
		return e.digestString(content.Name + "\x00" + e.normalizeText(content.Text))
	}
	return e.contentHash(content, src)
}

// normalize copies el without volatile attributes, with relationship ids
// replaced by what they point at and with text normalized.
func (e *engine) normalize(el *wml.Element, src source) *wml.Element {
	c := &wml.Element{Name: el.Name}
	for _, a := range el.Attrs {
		if volatile(el.Name, a.Name) {
			continue
		}
		v := a.Value
		if isRelAttr(a.Name) {
			v = e.relKey(src, v)
		}
		c.Attrs = append(c.Attrs, wml.Attr{Name: a.Name, Value: v})
	}
	if el.Text != "" {
		c.Text = e.normalizeText(el.Text)
	}
	if len(el.Children) > 0 {
		c.Children = make([]*wml.Element, len(el.Children))
		for i, child := range el.Children {
			c.Children[i] = e.normalize(child, src)
		}
	}
	return c
}

func (e *engine) normalizeText(s string) string {
	if e.settings.ConflateSpaces {
		s = encoding.ConflateSpaces(s)
	}
	if e.settings.CaseInsensitive {
		s = e.caser.String(s)
	}
	return s
}

// relKey describes the target of a relationship independently of its id.
func (e *engine) relKey(src source, id string) string {
	rel, ok := src.part.Rel(id)
	if !ok {
		return id
	}
	key := rel.Type + "|" + rel.Target
	if rel.External {
		return key
	}
	if data, ok := src.pkg.Media[rel.Target]; ok {
		mk := mediaKey{pkg: src.pkg, target: rel.Target}
		h, ok := e.media[mk]
		if !ok {
			h = e.digest(data)
			e.media[mk] = h
		}
		key += "|" + h
	}
	return key
}

// volatile reports attributes that differ between otherwise equal content.
func volatile(elName, attr string) bool {
	switch {
	case strings.HasPrefix(attr, "rl:"), strings.HasPrefix(attr, "w:rsid"):
		return true
	case attr == "w14:paraId", attr == "w14:textId":
		return true
	case elName == wml.DocPr && attr == "id":
		return true
	case attr == wml.AttrID:
		switch elName {
		case wml.FootnoteReference, wml.EndnoteReference, wml.Ins, wml.Del:
			return true
		}
	}
	return false
}

func isRelAttr(name string) bool {
	for _, n := range wml.RelAttrs {
		if n == name {
			return true
		}
	}
	return false
}

// structureHash digests the shape of a table, row or cell: element names and
// merge settings, no content.
func (e *engine) structureHash(el *wml.Element) string {
	var b strings.Builder
	writeStructure(&b, el)
	return e.digest([]byte(b.String()))
}

func writeStructure(b *strings.Builder, el *wml.Element) {
	b.WriteString(el.Name)
	if el.Name == wml.Tc {
		if pr := el.Child(wml.TcPr); pr != nil {
			for _, name := range []string{wml.GridSpan, wml.VMerge, wml.HMerge} {
				if m := pr.Child(name); m != nil {
					b.WriteString("|" + name + "=" + m.Attr(wml.AttrVal))
				}
			}
		}
	}
	b.WriteString("(")
	writeStructureChildren(b, el)
	b.WriteString(")")
}

func writeStructureChildren(b *strings.Builder, el *wml.Element) {
	for _, c := range el.Children {
		switch c.Name {
		case wml.Tr, wml.Tc:
			writeStructure(b, c)
		case wml.Sdt, wml.SdtContent, wml.CustomXML:
			writeStructureChildren(b, c)
		}
	}
}

// hasMergedCells reports whether a table spans or merges any cell.
func hasMergedCells(tbl *wml.Element) bool {
	for _, tc := range tbl.Descendants(wml.Tc) {
		pr := tc.Child(wml.TcPr)
		if pr == nil {
			continue
		}
		if span := pr.Child(wml.GridSpan); span != nil {
			if n, err := strconv.Atoi(span.Attr(wml.AttrVal)); err == nil && n > 1 {
				return true
			}
		}
		if pr.Child(wml.VMerge) != nil || pr.Child(wml.HMerge) != nil {
			return true
		}
	}
	return false
}
