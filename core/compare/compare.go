// Package compare computes a structural, revision-aware difference between
// two WordprocessingML documents.
//
// Both documents are flattened into atoms (one per character or non-text
// leaf), regrouped into words and then into groups mirroring paragraphs,
// tables, rows, cells and text boxes. The correlation engine decomposes the
// two unit sequences into Equal, Deleted and Inserted runs, and the
// classified atoms are folded back into a document in which deleted and
// inserted content is wrapped in w:del and w:ins markers.
package compare

import (
	"strconv"
	"time"

	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/wml"
	"github.com/FocuswithJustin/redline/internal/logging"
)

// Result is the outcome of a comparison.
type Result struct {
	// Document is the original document annotated with revisions.
	Document *wml.Package

	// Atoms is the classified atom list of the main document part. Every atom
	// of both inputs appears exactly once: as an Equal atom (the original
	// counterpart in Before), a Deleted atom or an Inserted atom.
	Atoms []*Atom
}

// Stats counts classified atoms.
type Stats struct {
	Equal    int
	Inserted int
	Deleted  int
}

// Stats counts the atoms of the result by status.
func (r *Result) Stats() Stats {
	var s Stats
	for _, a := range r.Atoms {
		switch a.Status {
		case Equal:
			s.Equal++
		case Inserted:
			s.Inserted++
		case Deleted:
			s.Deleted++
		}
	}
	return s
}

// Compare returns before annotated with the revisions that turn it into after.
// Neither input is modified.
func Compare(before, after *wml.Package, s Settings) (*wml.Package, error) {
	res, err := run(before, after, s, false)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// CompareRetainingIDs is like Compare but keeps UnidAttr identifiers on the
// output. Content that matched before keeps the identifiers of before, which
// lets callers anchor revisions to the original document.
func CompareRetainingIDs(before, after *wml.Package, s Settings) (*wml.Package, error) {
	res, err := run(before, after, s, true)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// Classify compares like Compare and also returns the classified atoms.
func Classify(before, after *wml.Package, s Settings) (*Result, error) {
	return run(before, after, s, false)
}

// AssignIDs returns a copy of pkg in which every element carries a UnidAttr
// identifier. Identifiers already present are kept.
func AssignIDs(pkg *wml.Package) (res *wml.Package, err error) {
	defer recoverInconsistency(&err)
	return newEngine(DefaultSettings()).prepare(pkg, nil)
}

// Atomize returns the atoms of root's content. A w:document root is atomized
// from its body.
func Atomize(root *wml.Element, s Settings) (atoms []*Atom, err error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	defer recoverInconsistency(&err)
	e := newEngine(s)
	r := root.Clone()
	if err := e.prepareElement(r, nil, map[string]bool{}); err != nil {
		return nil, err
	}
	if body := r.Child(wml.Body); r.Name == wml.Document && body != nil {
		r = body
	}
	return e.atomize(r, source{pkg: &wml.Package{}}), nil
}

// Words groups atoms into words.
func Words(atoms []*Atom, s Settings) []*Unit {
	return newEngine(s).words(atoms)
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

// comparison is one run of the engine over two prepared packages.
type comparison struct {
	e      *engine
	before *wml.Package
	after  *wml.Package
	result *wml.Package
	rb     *rebuilder
	atoms  []*Atom
}

func run(before, after *wml.Package, s Settings, retain bool) (res *Result, err error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	defer recoverInconsistency(&err)
	start := time.Now()
	if before != nil && after != nil && before.Body() != nil && after.Body() != nil {
		logging.ComparisonStarted(len(before.Body().Children), len(after.Body().Children))
	}

	e := newEngine(s)
	b, err := e.prepare(before, nil)
	if err != nil {
		return nil, err
	}
	a, err := e.prepare(after, identifiers(b))
	if err != nil {
		return nil, err
	}
	e.register(b)
	e.register(a)
	e.hashPackage(b, false)
	e.hashPackage(a, true)
	logging.PhaseTiming("prepare", time.Since(start))

	c := &comparison{e: e, before: b, after: a}
	c.run()
	finish(c.result, retain)

	res = &Result{Document: c.result, Atoms: c.atoms}
	stats := res.Stats()
	logging.ComparisonFinished(stats.Equal, stats.Inserted, stats.Deleted, time.Since(start))
	return res, nil
}

func (c *comparison) run() {
	e := c.e
	beforeBody, afterBody := c.before.Body(), c.after.Body()
	left := e.atomize(beforeBody, source{pkg: c.before, part: c.before.Main})
	right := e.atomize(afterBody, source{pkg: c.after, part: c.after.Main})
	logging.Debug("atomized", "before_atoms", len(left), "after_atoms", len(right))

	t := time.Now()
	seqs := e.correlate(e.units(left), e.units(right))
	logging.PhaseTiming("correlate", time.Since(t), "sequences", len(seqs))

	c.atoms = flatten(seqs)
	e.resolveAncestors(c.atoms)

	c.result = &wml.Package{
		Main:      partShell(c.before.Main),
		Footnotes: partShell(c.before.Footnotes),
		Endnotes:  partShell(c.before.Endnotes),
		Media:     make(map[string][]byte, len(c.before.Media)),
	}
	for k, v := range c.before.Media {
		c.result.Media[k] = v
	}
	c.rb = &rebuilder{
		e:          e,
		relocators: map[*wml.Part]*relocator{},
		collect:    true,
	}
	c.rb.relocators[c.after.Main] = newRelocator(c.after, c.after.Main, c.result, c.result.Main)

	t = time.Now()
	body := c.rb.splice(beforeBody, c.before.Main, c.rb.children(c.atoms, 0))
	c.result.Main.Root = replaceChild(c.before.Main.Root, beforeBody, body)
	refs := c.rb.refs
	c.rb.collect = false
	c.rebuildNotes(footnoteKind, refs)
	c.rebuildNotes(endnoteKind, refs)
	logging.PhaseTiming("reassemble", time.Since(t))
}

// partShell copies a part without its content.
func partShell(p *wml.Part) *wml.Part {
	if p == nil {
		return nil
	}
	return &wml.Part{URI: p.URI, Rels: append([]wml.Relationship(nil), p.Rels...)}
}

// replaceChild copies root with old replaced by repl at any depth.
func replaceChild(root, old, repl *wml.Element) *wml.Element {
	if root == old {
		return repl
	}
	c := root.Shallow()
	for _, child := range root.Children {
		c.Append(replaceChild(child, old, repl))
	}
	return c
}

// finish renumbers revision markers and drawing ids across the package,
// strips engine attributes and drops paragraph properties left empty.
func finish(pkg *wml.Package, retain bool) {
	rev, shape := 0, 0
	for _, part := range parts(pkg) {
		stripAttrs(part.Root, retain)
		part.Root.Walk(func(el *wml.Element) bool {
			switch el.Name {
			case wml.Ins, wml.Del:
				rev++
				el.SetAttr(wml.AttrID, strconv.Itoa(rev))
			case wml.DocPr:
				shape++
				el.SetAttr("id", strconv.Itoa(shape))
			case wml.P:
				el.RemoveChildren(func(c *wml.Element) bool {
					return c.Name == wml.PPr && len(c.Children) == 0 && len(c.Attrs) == 0
				})
			}
			return true
		})
	}
}
