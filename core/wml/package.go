package wml

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Relationship is an entry of a part's relationship list.
type Relationship struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Target   string `json:"target"`
	External bool   `json:"external,omitempty"`
}

// Part is a document part: a root element plus the relationships its content
// refers to.
type Part struct {
	URI  string         `json:"uri"`
	Root *Element       `json:"root"`
	Rels []Relationship `json:"rels,omitempty"`
}

// Rel returns the relationship with the given id.
func (p *Part) Rel(id string) (Relationship, bool) {
	if p == nil {
		return Relationship{}, false
	}
	for _, r := range p.Rels {
		if r.ID == id {
			return r, true
		}
	}
	return Relationship{}, false
}

// AddRel appends a relationship under a fresh "rIdN" id and returns that id.
func (p *Part) AddRel(typ, target string, external bool) string {
	used := make(map[string]bool, len(p.Rels))
	for _, r := range p.Rels {
		used[r.ID] = true
	}
	n := len(p.Rels) + 1
	id := "rId" + strconv.Itoa(n)
	for used[id] {
		n++
		id = "rId" + strconv.Itoa(n)
	}
	p.Rels = append(p.Rels, Relationship{ID: id, Type: typ, Target: target, External: external})
	return id
}

// Clone deep-copies the part.
func (p *Part) Clone() *Part {
	if p == nil {
		return nil
	}
	return &Part{
		URI:  p.URI,
		Root: p.Root.Clone(),
		Rels: append([]Relationship(nil), p.Rels...),
	}
}

// Package groups the parts the engine reads and writes.
type Package struct {
	Main      *Part `json:"main"`
	Footnotes *Part `json:"footnotes,omitempty"`
	Endnotes  *Part `json:"endnotes,omitempty"`

	// Media holds binary parts keyed by their target path relative to the main part.
	Media map[string][]byte `json:"-"`
}

// NewPackage wraps a document root element in a package.
func NewPackage(root *Element) *Package {
	return &Package{
		Main:  &Part{URI: "word/document.xml", Root: root},
		Media: map[string][]byte{},
	}
}

// Body returns the w:body element of the main part.
func (pkg *Package) Body() *Element {
	if pkg == nil || pkg.Main == nil || pkg.Main.Root == nil {
		return nil
	}
	if pkg.Main.Root.Name == Body {
		return pkg.Main.Root
	}
	return pkg.Main.Root.Child(Body)
}

// Clone deep-copies the package. Media bytes are shared; they are never mutated.
func (pkg *Package) Clone() *Package {
	c := &Package{
		Main:      pkg.Main.Clone(),
		Footnotes: pkg.Footnotes.Clone(),
		Endnotes:  pkg.Endnotes.Clone(),
		Media:     make(map[string][]byte, len(pkg.Media)),
	}
	for k, v := range pkg.Media {
		c.Media[k] = v
	}
	return c
}

// AddMedia stores data under target, renaming the target when it is taken by
// different content. It returns the target actually used.
func (pkg *Package) AddMedia(target string, data []byte) string {
	if pkg.Media == nil {
		pkg.Media = map[string][]byte{}
	}
	existing, ok := pkg.Media[target]
	if !ok {
		pkg.Media[target] = data
		return target
	}
	if string(existing) == string(data) {
		return target
	}
	ext := path.Ext(target)
	base := strings.TrimSuffix(target, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, taken := pkg.Media[candidate]; !taken {
			pkg.Media[candidate] = data
			return candidate
		}
	}
}
