package compare

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/redline/core/notation"
	"github.com/FocuswithJustin/redline/core/wml"
)

func textUnit(s string) *Unit {
	a := &Atom{Content: wml.NewText(wml.T, s), Hash: "t:" + s}
	return &Unit{Kind: UnitWord, Atoms: []*Atom{a}, Hash: a.Hash}
}

func markUnit() *Unit {
	a := &Atom{Content: wml.New(wml.PPr), Hash: "mark"}
	return &Unit{Kind: UnitWord, Atoms: []*Atom{a}, Hash: a.Hash}
}

func textUnits(prefix string, n int) []*Unit {
	out := make([]*Unit, n)
	for i := range out {
		out[i] = textUnit(fmt.Sprintf("%s%d", prefix, i))
	}
	return out
}

// groupUnit builds a paragraph unit holding one word of n atoms.
func groupUnit(hash, correlated string, n int) *Unit {
	word := &Unit{Kind: UnitWord, Atoms: make([]*Atom, n)}
	for i := range word.Atoms {
		word.Atoms[i] = &Atom{Content: wml.NewText(wml.T, "x"), Hash: "t:x"}
	}
	word.Hash = hash + "/word"
	return &Unit{Kind: UnitParagraph, Hash: hash, CorrelatedHash: correlated, Children: []*Unit{word}}
}

// shape renders sequences as status and side lengths.
func shape(seqs []*Sequence) []string {
	var out []string
	for _, s := range seqs {
		out = append(out, fmt.Sprintf("%s %d/%d", s.Status, len(s.Left), len(s.Right)))
	}
	return out
}

func join(parts ...[]*Unit) []*Unit {
	var out []*Unit
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// TestCorrelateThreshold verifies that short common runs in long sequences
// are not trusted.
func TestCorrelateThreshold(t *testing.T) {
	e := newEngine(DefaultSettings())
	common := textUnits("c", 10)
	left := join(common, textUnits("l", 90))
	right := join(common, textUnits("r", 90))

	got := shape(e.correlate(left, right))
	want := []string{"deleted 100/0", "inserted 0/100"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("10/100 common run (-want +got):\n%s", diff)
	}

	common = textUnits("c", 20)
	left = join(common, textUnits("l", 80))
	right = join(common, textUnits("r", 80))
	got = shape(e.correlate(left, right))
	want = []string{"equal 20/20", "deleted 80/0", "inserted 0/80"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("20/100 common run (-want +got):\n%s", diff)
	}
}

// TestCorrelateMarkRun verifies that a common run consisting of a lone
// paragraph mark is only accepted at the end of both sides.
func TestCorrelateMarkRun(t *testing.T) {
	e := newEngine(DefaultSettings())
	mark := markUnit()

	left := []*Unit{textUnit("a"), mark, textUnit("b")}
	right := []*Unit{textUnit("x"), mark, textUnit("y")}
	if got := e.longestRun(left, right); got != nil {
		t.Errorf("longestRun() = %v, want nil for a mid-sequence mark", shape(got))
	}

	left = []*Unit{textUnit("a"), textUnit("b"), mark}
	right = []*Unit{textUnit("x"), mark}
	got := shape(e.longestRun(left, right))
	want := []string{"unknown 2/1", "equal 1/1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("trailing mark (-want +got):\n%s", diff)
	}
}

// TestCorrelateLeadingMarkTrimmed verifies that a run led by a paragraph
// mark starts after it.
func TestCorrelateLeadingMarkTrimmed(t *testing.T) {
	e := newEngine(DefaultSettings())
	mark := markUnit()
	shared := textUnits("s", 3)
	left := join([]*Unit{textUnit("a")}, []*Unit{mark}, shared, []*Unit{textUnit("b")})
	right := join([]*Unit{textUnit("x")}, []*Unit{mark}, shared, []*Unit{textUnit("y")})

	got := shape(e.longestRun(left, right))
	want := []string{"unknown 2/2", "equal 3/3", "unknown 1/1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("longestRun() (-want +got):\n%s", diff)
	}
}

// TestCorrelatePrefixMark verifies that a common prefix does not start on a
// paragraph mark unless the mark is all that matches.
func TestCorrelatePrefixMark(t *testing.T) {
	e := newEngine(DefaultSettings())
	mark := markUnit()
	shared := textUnits("s", 3)

	tests := []struct {
		name  string
		left  []*Unit
		right []*Unit
		want  []string
	}{
		{
			name:  "mark before shared words",
			left:  join([]*Unit{mark}, shared, []*Unit{textUnit("a")}),
			right: join([]*Unit{mark}, shared, []*Unit{textUnit("x")}),
			want:  []string{"unknown 1/1", "equal 3/3", "unknown 1/1"},
		},
		{
			name:  "mark alone",
			left:  []*Unit{mark, textUnit("a")},
			right: []*Unit{mark, textUnit("x")},
			want:  []string{"equal 1/1", "unknown 1/1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shape(e.commonEnds(tt.left, tt.right))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("commonEnds() (-want +got):\n%s", diff)
			}
		})
	}
}

// TestCorrelateSeparatorNoise verifies that lone separators do not anchor a
// match.
func TestCorrelateSeparatorNoise(t *testing.T) {
	e := newEngine(DefaultSettings())
	left := []*Unit{textUnit("a"), textUnit(" "), textUnit("b")}
	right := []*Unit{textUnit("x"), textUnit(" "), textUnit("y")}
	if got := e.longestRun(left, right); got != nil {
		t.Errorf("longestRun() = %v, want nil", shape(got))
	}
}

// TestCorrelateSuffixMark verifies that a common paragraph mark at the end
// is matched even below the threshold.
func TestCorrelateSuffixMark(t *testing.T) {
	e := newEngine(DefaultSettings())
	mark := markUnit()
	left := join(textUnits("l", 20), []*Unit{mark})
	right := join(textUnits("r", 20), []*Unit{mark})

	got := shape(e.commonEnds(left, right))
	want := []string{"unknown 20/20", "equal 1/1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("commonEnds() (-want +got):\n%s", diff)
	}
}

// TestCorrelateEmptySides verifies insertion into and deletion from nothing.
func TestCorrelateEmptySides(t *testing.T) {
	e := newEngine(DefaultSettings())
	if got := shape(e.correlate(nil, textUnits("r", 2))); !cmp.Equal(got, []string{"inserted 0/2"}) {
		t.Errorf("correlate(nil, r) = %v", got)
	}
	if got := shape(e.correlate(textUnits("l", 2), nil)); !cmp.Equal(got, []string{"deleted 2/0"}) {
		t.Errorf("correlate(l, nil) = %v", got)
	}
	if got := e.correlate(nil, nil); len(got) != 0 {
		t.Errorf("correlate(nil, nil) = %v, want nothing", shape(got))
	}
}

// TestCorrelateUnrelated verifies that documents sharing no block are
// replaced at once.
func TestCorrelateUnrelated(t *testing.T) {
	e := newEngine(DefaultSettings())
	para := func(s string) *Unit {
		return &Unit{Kind: UnitParagraph, Hash: s, Children: []*Unit{textUnit(s), markUnit()}}
	}
	left := []*Unit{para("a"), para("b"), para("c"), para("d")}
	right := []*Unit{para("w"), para("x"), para("y"), para("z")}

	got := shape(e.correlate(left, right))
	want := []string{"deleted 4/0", "inserted 0/4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("correlate() (-want +got):\n%s", diff)
	}
}

// TestCorrelateOrder verifies that sequences come out in document order and
// cover both sides.
func TestCorrelateOrder(t *testing.T) {
	e := newEngine(DefaultSettings())
	left := []*Unit{textUnit("a"), textUnit("b"), textUnit("c"), textUnit("d"), markUnit()}
	right := []*Unit{textUnit("a"), textUnit("x"), textUnit("c"), textUnit("y"), markUnit()}

	var l, r []string
	for _, s := range e.correlate(left, right) {
		for _, u := range s.Left {
			l = append(l, u.Text())
		}
		for _, u := range s.Right {
			r = append(r, u.Text())
		}
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d", "¶"}, l); diff != "" {
		t.Errorf("left order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "x", "c", "y", "¶"}, r); diff != "" {
		t.Errorf("right order (-want +got):\n%s", diff)
	}
}

// TestLongestCommon verifies the common-run search.
func TestLongestCommon(t *testing.T) {
	tests := []struct {
		a, b    string
		i, j, n int
	}{
		{"abcdef", "zcdez", 2, 1, 3},
		{"abc", "xyz", 0, 0, 0},
		{"aaaa", "aa", 0, 0, 2},
		{"", "abc", 0, 0, 0},
	}
	for _, tt := range tests {
		i, j, n := longestCommon(len(tt.a), len(tt.b), func(x, y int) bool { return tt.a[x] == tt.b[y] })
		if i != tt.i || j != tt.j || n != tt.n {
			t.Errorf("longestCommon(%q, %q) = %d, %d, %d; want %d, %d, %d", tt.a, tt.b, i, j, n, tt.i, tt.j, tt.n)
		}
	}
}

// TestLCSPairs verifies subsequence alignment.
func TestLCSPairs(t *testing.T) {
	a, b := "ABCBDAB", "BDCABA"
	pairs := lcsPairs(len(a), len(b), func(i, j int) bool { return a[i] == b[j] })
	if len(pairs) != 4 {
		t.Fatalf("len(pairs) = %d, want 4", len(pairs))
	}
	for k, p := range pairs {
		if a[p[0]] != b[p[1]] {
			t.Errorf("pair %d = %v joins %c and %c", k, p, a[p[0]], b[p[1]])
		}
		if k > 0 && (p[0] <= pairs[k-1][0] || p[1] <= pairs[k-1][1]) {
			t.Errorf("pairs not increasing at %d: %v", k, pairs)
		}
	}
}

// TestCorrelatedRun verifies matching by correlated hashes: at least three
// groups per side, and more than 16 atoms for a single group or more than 32
// for two or three.
func TestCorrelatedRun(t *testing.T) {
	tests := []struct {
		name  string
		left  []*Unit
		right []*Unit
		want  []string
	}{
		{
			name:  "two groups",
			left:  []*Unit{groupUnit("a", "A", 40), groupUnit("b", "B", 40)},
			right: []*Unit{groupUnit("a2", "A", 40), groupUnit("b2", "B", 40)},
		},
		{
			name:  "one group of 16 atoms",
			left:  []*Unit{groupUnit("l1", "L1", 2), groupUnit("p", "C", 16), groupUnit("l2", "L2", 2)},
			right: []*Unit{groupUnit("r1", "R1", 2), groupUnit("q", "C", 16), groupUnit("r2", "R2", 2)},
		},
		{
			name:  "one group of 17 atoms",
			left:  []*Unit{groupUnit("l1", "L1", 2), groupUnit("p", "C", 17), groupUnit("l2", "L2", 2)},
			right: []*Unit{groupUnit("r1", "R1", 2), groupUnit("q", "C", 17), groupUnit("r2", "R2", 2)},
			want:  []string{"unknown 1/1", "unknown 1/1", "unknown 1/1"},
		},
		{
			name:  "two groups of 32 atoms",
			left:  []*Unit{groupUnit("l1", "L1", 2), groupUnit("p", "C", 16), groupUnit("p2", "D", 16)},
			right: []*Unit{groupUnit("r1", "R1", 2), groupUnit("q", "C", 16), groupUnit("q2", "D", 16)},
		},
		{
			name:  "two groups of 34 atoms",
			left:  []*Unit{groupUnit("l1", "L1", 2), groupUnit("p", "C", 17), groupUnit("p2", "D", 17)},
			right: []*Unit{groupUnit("r1", "R1", 2), groupUnit("q", "C", 17), groupUnit("p2", "D", 17)},
			want:  []string{"unknown 1/1", "unknown 1/1", "equal 1/1"},
		},
		{
			name:  "four small groups",
			left:  []*Unit{groupUnit("a", "A", 1), groupUnit("b", "B", 1), groupUnit("c", "C", 1), groupUnit("d", "D", 1)},
			right: []*Unit{groupUnit("a", "A", 1), groupUnit("b2", "B", 1), groupUnit("c2", "C", 1), groupUnit("d2", "D", 1)},
			want:  []string{"equal 1/1", "unknown 1/1", "unknown 1/1", "unknown 1/1"},
		},
		{
			name:  "words are not correlated",
			left:  []*Unit{groupUnit("a", "A", 20), groupUnit("b", "B", 20), textUnit("w")},
			right: []*Unit{groupUnit("a2", "A", 20), groupUnit("b2", "B", 20), textUnit("w")},
		},
		{
			name:  "missing correlated hashes",
			left:  []*Unit{groupUnit("a", "", 20), groupUnit("b", "", 20), groupUnit("c", "", 20)},
			right: []*Unit{groupUnit("a2", "", 20), groupUnit("b2", "", 20), groupUnit("c2", "", 20)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(DefaultSettings())
			got := shape(e.correlatedRun(tt.left, tt.right))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("correlatedRun() (-want +got):\n%s", diff)
			}
		})
	}
}

// TestCorrelatedHashResolvesRevisions verifies that correlated hashes are
// taken with tracked revisions resolved, while content hashes keep them.
func TestCorrelatedHashResolvesRevisions(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		accept   bool
		resolved string
	}{
		{
			name:     "no revisions",
			src:      `p { r { t "Text" } }`,
			accept:   true,
			resolved: `p { r { t "Text" } }`,
		},
		{
			name:     "accepted insertion",
			src:      `p { r { t "Text" } ins[id="1" author="A"] { r { t " added" } } }`,
			accept:   true,
			resolved: `p { r { t "Text" } r { t " added" } }`,
		},
		{
			name:     "rejected insertion",
			src:      `p { r { t "Text" } ins[id="1" author="A"] { r { t " added" } } }`,
			accept:   false,
			resolved: `p { r { t "Text" } }`,
		},
		{
			name:     "accepted deletion",
			src:      `p { r { t "Text" } del[id="1" author="A"] { r { delText " gone" } } }`,
			accept:   true,
			resolved: `p { r { t "Text" } }`,
		},
		{
			name:     "rejected deletion",
			src:      `p { r { t "Text" } del[id="1" author="A"] { r { delText " gone" } } }`,
			accept:   false,
			resolved: `p { r { t "Text" } r { t " gone" } }`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(DefaultSettings())
			hashed := func(src string) *wml.Element {
				pkg, err := e.prepare(notation.MustDocument(src), nil)
				if err != nil {
					t.Fatalf("prepare(%s) failed: %v", src, err)
				}
				e.hashPackage(pkg, tt.accept)
				return pkg.Body().Child(wml.P)
			}
			p := hashed(tt.src)
			plain := hashed(tt.resolved)

			if got, want := p.Attr(correlatedHashAttr), plain.Attr(hashAttr); got != want {
				t.Errorf("correlated hash = %s, want the hash of %s (%s)", got, tt.resolved, want)
			}
			if differs := p.Attr(hashAttr) != p.Attr(correlatedHashAttr); differs != (tt.src != tt.resolved) {
				t.Errorf("content and correlated hashes differ = %v, want %v", differs, tt.src != tt.resolved)
			}
		})
	}
}
