package compare

import "github.com/FocuswithJustin/redline/core/wml"

// propertyChanges are the former-formatting records of tracked property
// changes. They are dropped whichever way revisions are resolved.
var propertyChanges = map[string]bool{
	"w:pPrChange":       true,
	"w:rPrChange":       true,
	"w:tblPrChange":     true,
	"w:tblPrExChange":   true,
	"w:trPrChange":      true,
	"w:tcPrChange":      true,
	"w:sectPrChange":    true,
	"w:tblGridChange":   true,
	"w:numberingChange": true,
}

// resolveRevisions returns a copy of el with every tracked revision accepted
// (accept) or rejected. Identifiers are copied, so resolved blocks can be
// matched back to the elements they came from.
func resolveRevisions(el *wml.Element, accept bool) *wml.Element {
	c := el.Shallow()
	for _, child := range el.Children {
		c.Children = append(c.Children, resolveChild(child, accept)...)
	}
	return c
}

func resolveChild(el *wml.Element, accept bool) []*wml.Element {
	keep, drop := wml.Ins, wml.Del
	keepMove, dropMove := "w:moveTo", "w:moveFrom"
	if !accept {
		keep, drop = wml.Del, wml.Ins
		keepMove, dropMove = "w:moveFrom", "w:moveTo"
	}
	switch {
	case el.Name == drop || el.Name == dropMove || propertyChanges[el.Name]:
		return nil
	case el.Name == keep || el.Name == keepMove:
		return resolveRevisions(el, accept).Children
	case el.Name == wml.Tr:
		if pr := el.Child(wml.TrPr); pr != nil && pr.Child(drop) != nil {
			return nil
		}
	case !accept && el.Name == wml.DelText:
		c := resolveRevisions(el, accept)
		c.Name = wml.T
		return []*wml.Element{c}
	case !accept && el.Name == wml.DelInstr:
		c := resolveRevisions(el, accept)
		c.Name = wml.InstrText
		return []*wml.Element{c}
	}
	return []*wml.Element{resolveRevisions(el, accept)}
}
