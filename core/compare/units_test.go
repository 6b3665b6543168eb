package compare

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/redline/core/notation"
	"github.com/FocuswithJustin/redline/core/wml"
)

func wordTexts(t *testing.T, src string) []string {
	t.Helper()
	atoms, err := Atomize(notation.MustDocument(src).Main.Root, DefaultSettings())
	if err != nil {
		t.Fatalf("Atomize(%s) failed: %v", src, err)
	}
	var out []string
	for _, w := range Words(atoms, DefaultSettings()) {
		out = append(out, w.Text())
	}
	return out
}

// TestWords verifies word boundaries.
func TestWords(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "decimal and comma after number",
			src:  `p { r { t "item 3.14, done" } }`,
			want: []string{"item", " ", "3.14,", " ", "done", "¶"},
		},
		{
			name: "sentence end",
			src:  `p { r { t "end. Next" } }`,
			want: []string{"end", ".", " ", "Next", "¶"},
		},
		{
			name: "thousands separator",
			src:  `p { r { t "1,000 units" } }`,
			want: []string{"1,000", " ", "units", "¶"},
		},
		{
			name: "ideographs",
			src:  `p { r { t "中文ab" } }`,
			want: []string{"中", "文", "ab", "¶"},
		},
		{
			name: "word across runs",
			src:  `p { r { t "He" } r { rPr { b } t "llo" } }`,
			want: []string{"Hello", "¶"},
		},
		{
			name: "tab breaks words",
			src:  `p { r { t "a" tab t "b" } }`,
			want: []string{"a", "[tab]", "b", "¶"},
		},
		{
			name: "paragraph boundary",
			src:  `p { r { t "ab" } } p { r { t "cd" } }`,
			want: []string{"ab", "¶", "cd", "¶"},
		},
		{
			name: "cell boundary",
			src:  `tbl { tr { tc { p { r { t "ab" } } } tc { p { r { t "cd" } } } } }`,
			want: []string{"ab", "¶", "cd", "¶"},
		},
		{
			name: "hyperlink is transparent",
			src:  `p { r { t "go " } hyperlink[r:id="rId1"] { r { t "here" } } }`,
			want: []string{"go", " ", "here", "¶"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, wordTexts(t, tt.src)); diff != "" {
				t.Errorf("words mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestAtomize verifies atom chains and marks.
func TestAtomize(t *testing.T) {
	src := `p { bookmarkStart[id="0" name="x"] r { t "ab" } bookmarkEnd[id="0"] r { drawing { wp:inline { a:graphic } } } }`
	atoms, err := Atomize(notation.MustDocument(src).Main.Root, DefaultSettings())
	if err != nil {
		t.Fatalf("Atomize failed: %v", err)
	}
	var got []string
	for _, a := range atoms {
		got = append(got, a.String())
	}
	want := []string{"a", "b", "[drawing]", "¶"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("atoms mismatch (-want +got):\n%s", diff)
	}
	last := atoms[len(atoms)-1]
	if !last.IsMark() || len(last.Ancestors) != 1 || last.Ancestors[0].Name != wml.P {
		t.Errorf("mark chain = %v, want [w:p]", last.Ancestors)
	}
	if chain := atoms[0].Ancestors; len(chain) != 2 || chain[1].Name != wml.R {
		t.Errorf("text chain length = %d, want w:p/w:r", len(chain))
	}
	if atoms[0].Hash == atoms[1].Hash {
		t.Error("different characters share a hash")
	}
}

// TestAtomizeTextbox verifies that text-box paragraphs are atomized inside
// their shape.
func TestAtomizeTextbox(t *testing.T) {
	src := `p { r { drawing { wp:anchor { wp:extent[cx="1" cy="1"] wps:txbx { txbxContent { p { r { t "in" } } } } } } t "x" } }`
	atoms, err := Atomize(notation.MustDocument(src).Main.Root, DefaultSettings())
	if err != nil {
		t.Fatalf("Atomize failed: %v", err)
	}
	var got []string
	for _, a := range atoms {
		got = append(got, a.String())
	}
	want := []string{"i", "n", "¶", "x", "¶"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("atoms mismatch (-want +got):\n%s", diff)
	}
	if !atoms[0].inTextbox() || atoms[3].inTextbox() {
		t.Error("inTextbox() does not follow w:txbxContent")
	}
	for _, a := range atoms {
		for _, el := range a.Ancestors {
			if el.Name == "wp:extent" {
				t.Error("shape properties were put on a chain")
			}
		}
	}
}

// TestAtomHashIgnoresVolatileAttributes verifies that revision session ids
// and paragraph ids do not change hashes.
func TestAtomHashIgnoresVolatileAttributes(t *testing.T) {
	e := newEngine(DefaultSettings())
	a := notation.MustParse(`br[type="page" rsidR="00AB"]`)[0]
	b := notation.MustParse(`br[type="page" rsidR="00CD"]`)[0]
	c := notation.MustParse(`br[type="column"]`)[0]
	src := source{pkg: &wml.Package{}}
	if e.atomHash(a, src) != e.atomHash(b, src) {
		t.Error("w:rsidR changed the hash")
	}
	if e.atomHash(a, src) == e.atomHash(c, src) {
		t.Error("w:type did not change the hash")
	}
}

// TestRelationshipHashUsesTarget verifies that relationship ids are compared
// by what they point at.
func TestRelationshipHashUsesTarget(t *testing.T) {
	e := newEngine(DefaultSettings())
	link := notation.MustParse(`hyperlink[r:id="rId7"]`)[0]
	pkgA := wml.NewPackage(wml.New(wml.Document))
	pkgA.Main.Rels = []wml.Relationship{{ID: "rId7", Type: "hyperlink", Target: "https://example.com", External: true}}
	pkgB := wml.NewPackage(wml.New(wml.Document))
	pkgB.Main.Rels = []wml.Relationship{{ID: "rId7", Type: "hyperlink", Target: "https://example.org", External: true}}
	pkgC := wml.NewPackage(wml.New(wml.Document))
	pkgC.Main.Rels = []wml.Relationship{{ID: "rId3", Type: "hyperlink", Target: "https://example.com", External: true}}
	linkC := notation.MustParse(`hyperlink[r:id="rId3"]`)[0]

	hA := e.atomHash(link, source{pkg: pkgA, part: pkgA.Main})
	hB := e.atomHash(link, source{pkg: pkgB, part: pkgB.Main})
	hC := e.atomHash(linkC, source{pkg: pkgC, part: pkgC.Main})
	if hA == hB {
		t.Error("different targets share a hash")
	}
	if hA != hC {
		t.Error("same target under another id changed the hash")
	}
}
