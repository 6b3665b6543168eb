package consolidate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/FocuswithJustin/redline/core/compare"
	"github.com/FocuswithJustin/redline/core/wml"
	"github.com/FocuswithJustin/redline/internal/logging"
)

// group is the fragments one reviewer left at one anchor.
type group struct {
	reviewer  reviewer
	fragments []*fragment
}

func (g *group) key() string {
	keys := make([]string, len(g.fragments))
	for i, f := range g.fragments {
		keys[i] = f.key
	}
	return strings.Join(keys, "\x01")
}

func groups(fragments []*fragment) []*group {
	var out []*group
	byIndex := map[int]*group{}
	for _, f := range fragments {
		g, ok := byIndex[f.reviewer.index]
		if !ok {
			g = &group{reviewer: f.reviewer}
			byIndex[f.reviewer.index] = g
			out = append(out, g)
		}
		g.fragments = append(g.fragments, f)
	}
	return out
}

// placement is what goes in place of and after an original block.
type placement struct {
	replace *wml.Element
	after   []*wml.Element
}

// write places the collected fragments into the result body.
func (c *consolidation) write(reviewers int) {
	placed := map[string]*placement{}
	for _, anchor := range c.order {
		gs := groups(c.anchors[anchor])
		p := &placement{}
		placed[anchor] = p
		if agreed(gs, reviewers) {
			c.collapse(gs, p)
			continue
		}
		c.reportConflict(anchor, gs)
		for _, g := range gs {
			p.after = append(p.after, c.block(g)...)
		}
	}

	body := c.result.Body()
	var out []*wml.Element
	if p := placed[""]; p != nil {
		out = append(out, p.after...)
	}
	for _, el := range body.Children {
		id := el.Attr(compare.UnidAttr)
		p := placed[id]
		if id == "" || p == nil {
			out = append(out, el)
			continue
		}
		if p.replace != nil {
			out = append(out, p.replace)
		} else {
			out = append(out, el)
		}
		out = append(out, p.after...)
	}
	body.Children = out
}

// place moves the notes and relationships a fragment refers to into the
// result.
func (c *consolidation) place(f *fragment) {
	c.importNotes(f.delta, f.el)
	importRels(f.delta, f.delta.Main, c.result, c.result.Main, f.el)
}

// agreed reports whether every reviewer left the same change at an anchor.
func agreed(gs []*group, reviewers int) bool {
	if len(gs) != reviewers {
		return false
	}
	for _, g := range gs[1:] {
		if g.key() != gs[0].key() {
			return false
		}
	}
	return true
}

// collapse writes one copy of an agreed change, attributed to every reviewer.
// A fragment revising the anchor replaces it.
func (c *consolidation) collapse(gs []*group, p *placement) {
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = g.reviewer.name
	}
	author := strings.Join(names, ", ")
	for _, f := range gs[0].fragments {
		f.el.Walk(func(e *wml.Element) bool {
			if e.Name == wml.Ins || e.Name == wml.Del {
				e.SetAttr(wml.AttrAuthor, author)
			}
			return true
		})
		c.place(f)
		if f.modifies && p.replace == nil {
			p.replace = f.el
			continue
		}
		p.after = append(p.after, f.el)
	}
}

// block renders one reviewer's fragments: a bold header naming the reviewer
// and the fragments, inside a tinted single-cell table when tables are used.
func (c *consolidation) block(g *group) []*wml.Element {
	header := wml.New(wml.P,
		wml.New(wml.R,
			wml.New(wml.RPr, wml.New(wml.B)),
			wml.NewText(wml.T, g.reviewer.name)))
	content := []*wml.Element{header}
	for _, f := range g.fragments {
		c.place(f)
		content = append(content, f.el)
	}
	if !c.opts.UseTables {
		return content
	}
	if content[len(content)-1].Name != wml.P {
		content = append(content, wml.New(wml.P))
	}

	shd := wml.New(wml.Shd)
	shd.SetAttr(wml.AttrVal, "clear").SetAttr(wml.AttrColor, "auto").SetAttr(wml.AttrFill, g.reviewer.fill)
	tblW := wml.New(wml.TblW)
	tblW.SetAttr(wml.AttrW, "5000").SetAttr(wml.AttrType, "pct")
	style := wml.New(wml.TblStyle)
	style.SetAttr(wml.AttrVal, "TableGrid")
	gridCol := wml.New(wml.GridCol)
	gridCol.SetAttr(wml.AttrW, "9350")

	cell := wml.New(wml.Tc, wml.New(wml.TcPr, shd))
	cell.Append(content...)
	tbl := wml.New(wml.Tbl,
		wml.New(wml.TblPr, style, tblW),
		wml.New(wml.TblGrid, gridCol),
		wml.New(wml.Tr, cell))
	return []*wml.Element{tbl, wml.New(wml.P)}
}

// reportConflict sends a description of differing changes at one anchor to
// the log sink.
func (c *consolidation) reportConflict(anchor string, gs []*group) {
	distinct := map[string]bool{}
	for _, g := range gs {
		distinct[g.key()] = true
	}
	if len(distinct) < 2 {
		return
	}
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = g.reviewer.name
	}
	logging.ConsolidationConflict(anchor, names)
	if c.opts.Settings.LogSink == nil {
		return
	}

	var b strings.Builder
	where := "at the start of the document"
	if anchor != "" {
		where = "at block " + anchor
	}
	fmt.Fprintf(&b, "conflicting revisions %s by %s\n", where, strings.Join(names, ", "))
	base := fragmentsText(gs[0], true)
	for _, g := range gs[1:] {
		fmt.Fprintf(&b, "%s vs %s: %s\n", gs[0].reviewer.name, g.reviewer.name, diffText(base, fragmentsText(g, true)))
	}
	c.opts.Settings.LogSink(b.String())
}

func fragmentsText(g *group, accept bool) string {
	var b strings.Builder
	for _, f := range g.fragments {
		b.WriteString(revisedText(f.el, accept))
	}
	return strings.TrimRight(b.String(), "\n")
}

// diffText renders a character diff with deletions as [-x-] and insertions
// as {+x+}.
func diffText(a, b string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(a, b, false))
	var out strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			out.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			out.WriteString("{+" + d.Text + "+}")
		default:
			out.WriteString(d.Text)
		}
	}
	return strconv.Quote(out.String())
}
