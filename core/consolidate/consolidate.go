// Package consolidate merges several revised versions of one document into a
// single reviewable document.
//
// Each revision is compared with the original. Every top-level block of the
// resulting delta that carries tracked changes becomes a fragment, anchored
// to the original block it modifies or follows. Fragments are then written
// back next to their anchors, grouped per reviewer in labeled blocks. When
// all reviewers made the same change at an anchor the change is written once,
// as an ordinary tracked revision attributed to all of them.
package consolidate

import (
	"fmt"
	"strings"
	"time"

	"github.com/FocuswithJustin/redline/core/compare"
	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/wml"
	"github.com/FocuswithJustin/redline/internal/logging"
)

// Revision is one revised version of the original and who made it.
type Revision struct {
	Package  *wml.Package
	Reviewer string

	// Color tints the reviewer's block, as "#RRGGBB" or "RRGGBB". Empty picks
	// a color from a fixed palette.
	Color string
}

// Options controls a consolidation.
type Options struct {
	// Settings are used for every pairwise comparison. The author of each
	// comparison is the reviewer.
	Settings compare.Settings

	// UseTables renders reviewer blocks as tinted single-cell tables. When
	// false a bold header paragraph precedes the fragments instead.
	UseTables bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Settings: compare.DefaultSettings(), UseTables: true}
}

// Consolidate merges revisions into a copy of original.
func Consolidate(original *wml.Package, revisions []Revision, opts Options) (res *wml.Package, err error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, err
	}
	if len(revisions) == 0 {
		return nil, errors.NewValidation("revisions", "at least one revision is required")
	}
	colors := make([]string, len(revisions))
	for i, r := range revisions {
		if r.Package == nil {
			return nil, errors.NewValidation("revisions", fmt.Sprintf("revision %d has no document", i+1))
		}
		c, err := fill(r.Color, i)
		if err != nil {
			return nil, err
		}
		colors[i] = c
	}
	defer recoverInconsistency(&err)
	start := time.Now()

	orig, err := compare.AssignIDs(original)
	if err != nil {
		return nil, err
	}
	c := &consolidation{
		opts:    opts,
		result:  orig.Clone(),
		anchors: map[string][]*fragment{},
		blocks:  map[string]bool{},
	}
	for _, el := range orig.Body().Children {
		if id := el.Attr(compare.UnidAttr); id != "" {
			c.blocks[id] = true
		}
	}

	for i, r := range revisions {
		s := opts.Settings
		s.Author = r.Reviewer
		delta, err := compare.CompareRetainingIDs(orig, r.Package, s)
		if err != nil {
			return nil, errors.Wrapf(err, "comparing revision by %s", r.Reviewer)
		}
		n := c.collect(delta, reviewer{index: i, name: r.Reviewer, fill: colors[i]})
		logging.Debug("revision collected", "reviewer", r.Reviewer, "fragments", n)
	}

	c.write(len(revisions))
	finish(c.result)
	logging.PhaseTiming("consolidate", time.Since(start), "revisions", len(revisions))
	return c.result, nil
}

func recoverInconsistency(err *error) {
	if r := recover(); r != nil {
		ie, ok := r.(*errors.InconsistencyError)
		if !ok {
			panic(r)
		}
		*err = ie
	}
}

// reviewer identifies the author of a revision.
type reviewer struct {
	index int
	name  string
	fill  string
}

// fragment is one block-level revision found in a delta.
type fragment struct {
	reviewer reviewer
	el       *wml.Element
	delta    *wml.Package

	// anchor is the identifier of the original block the fragment belongs
	// to; empty anchors the fragment at the start of the document.
	anchor string

	// modifies is set when the fragment is a revised version of its anchor
	// rather than new content following it.
	modifies bool

	// key compares fragments between reviewers.
	key string
}

// consolidation holds the state of one Consolidate call.
type consolidation struct {
	opts   Options
	result *wml.Package

	// anchors maps an original block identifier to the fragments anchored
	// there, in revision order.
	anchors map[string][]*fragment
	order   []string

	// blocks holds the identifiers of the original top-level blocks.
	blocks map[string]bool
}

// collect records the fragments of one delta and returns how many it found.
func (c *consolidation) collect(delta *wml.Package, r reviewer) int {
	body := delta.Body()
	n := 0
	for i, el := range body.Children {
		if el.Name == wml.SectPr || !el.Has(wml.Ins, wml.Del) {
			continue
		}
		f := &fragment{reviewer: r}
		id := el.Attr(compare.UnidAttr)
		if c.blocks[id] {
			f.anchor, f.modifies = id, true
		} else {
			for k := i - 1; k >= 0; k-- {
				if prev := body.Children[k].Attr(compare.UnidAttr); c.blocks[prev] {
					f.anchor = prev
					break
				}
			}
		}
		f.el = el.Clone()
		f.delta = delta
		f.key = revisedText(f.el, true) + "\x00" + revisedText(f.el, false)
		if _, ok := c.anchors[f.anchor]; !ok {
			c.order = append(c.order, f.anchor)
		}
		c.anchors[f.anchor] = append(c.anchors[f.anchor], f)
		n++
	}
	return n
}

// revisedText renders the text of el with its revisions accepted or
// rejected. Paragraphs end with a newline.
func revisedText(el *wml.Element, accept bool) string {
	var b strings.Builder
	var walk func(*wml.Element)
	walk = func(e *wml.Element) {
		if (e.Name == wml.Del && accept) || (e.Name == wml.Ins && !accept) {
			return
		}
		switch e.Name {
		case wml.T, wml.DelText:
			b.WriteString(e.Text)
		case wml.Tab:
			b.WriteByte('\t')
		}
		for _, c := range e.Children {
			walk(c)
		}
		if e.Name == wml.P {
			b.WriteByte('\n')
		}
	}
	walk(el)
	return b.String()
}
