package pkgdir

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/notation"
	"github.com/FocuswithJustin/redline/core/wml"
)

const imageRel = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

func samplePackage(t *testing.T) *wml.Package {
	t.Helper()
	pkg := notation.MustDocument(`
		p { r { t "Alpha" } }
		p { r { footnoteReference[id="1"] } }
		p { r { t "Omega" } }`)
	notes, err := notation.Notes(wml.Footnotes, `footnote[id="1"] { p { r { t "Note" } } }`)
	if err != nil {
		t.Fatalf("Notes failed: %v", err)
	}
	pkg.Footnotes = notes
	pkg.Main.Rels = []wml.Relationship{{ID: "rId1", Type: imageRel, Target: "media/image1.png"}}
	pkg.Media["media/image1.png"] = []byte("PNG")
	return pkg
}

// bodyText renders the body of pkg in notation.
func bodyText(pkg *wml.Package) string {
	return notation.Format(pkg.Body().Children...)
}

func notesText(p *wml.Part) string {
	if p == nil {
		return ""
	}
	return notation.Format(p.Root.Children...)
}

// TestKindOf verifies layout selection from names.
func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"out", KindDir},
		{"out.tar.xz", KindBundleXZ},
		{"OUT.TXZ", KindBundleXZ},
		{"out.tar.gz", KindBundleGz},
		{"out.tgz", KindBundleGz},
		{"document.xml", KindPart},
		{"document.xml.xz", KindPart},
		{"draft.rln", KindNotation},
	}
	for _, tt := range tests {
		if got := KindOf(tt.name); got != tt.want {
			t.Errorf("KindOf(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// TestRoundTrip verifies that directories and bundles keep every part.
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		compress bool
	}{
		{"directory", "doc", false},
		{"compressed directory", "doc", true},
		{"xz bundle", "doc.tar.xz", false},
		{"gz bundle", "doc.tar.gz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := samplePackage(t)
			path := filepath.Join(t.TempDir(), tt.target)
			if err := Save(pkg, path, tt.compress); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if diff := cmp.Diff(bodyText(pkg), bodyText(got)); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(notesText(pkg.Footnotes), notesText(got.Footnotes)); diff != "" {
				t.Errorf("footnotes mismatch (-want +got):\n%s", diff)
			}
			if got.Endnotes != nil {
				t.Error("Endnotes should stay nil")
			}
			if diff := cmp.Diff(pkg.Main.Rels, got.Main.Rels); diff != "" {
				t.Errorf("rels mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(pkg.Media, got.Media); diff != "" {
				t.Errorf("media mismatch (-want +got):\n%s", diff)
			}
			if got.Main.URI != "word/document.xml" || got.Footnotes.URI != "word/footnotes.xml" {
				t.Errorf("URIs = %q, %q", got.Main.URI, got.Footnotes.URI)
			}
		})
	}
}

// TestCompressedDirectory verifies the .xz suffix on compressed part files.
func TestCompressedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "doc")
	if err := Save(samplePackage(t), dir, true); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	for _, name := range []string{"document.xml.xz", "footnotes.xml.xz", "_rels/document.xml.rels.xz", "media/image1.png"} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "document.xml")); !os.IsNotExist(err) {
		t.Error("uncompressed document.xml should not be written")
	}
}

// TestSingleParts verifies lone parts and notation files.
func TestSingleParts(t *testing.T) {
	pkg := notation.MustDocument(`p { r { t "Alpha" } } p { r { t "Beta" } }`)
	for _, name := range []string{"document.xml", "document.xml.xz", "draft.rln"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Save(pkg, path, false); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if diff := cmp.Diff(bodyText(pkg), bodyText(got)); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestSaveSinglePartRejectsNotes verifies that notes need a directory or bundle.
func TestSaveSinglePartRejectsNotes(t *testing.T) {
	err := Save(samplePackage(t), filepath.Join(t.TempDir(), "out.rln"), false)
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("Save() error = %v, want unsupported", err)
	}
	if err := Save(nil, filepath.Join(t.TempDir(), "out"), false); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Save(nil) error = %v, want invalid input", err)
	}
}

// TestLoadErrors verifies missing parts and malformed content.
func TestLoadErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Load() error = %v, want not exist", err)
		}
	})

	t.Run("missing main part", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "footnotes.xml"), []byte("<w:footnotes/>"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(dir)
		if !errors.Is(err, errors.ErrNotFound) {
			t.Errorf("Load() error = %v, want not found", err)
		}
	})

	t.Run("malformed XML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "document.xml")
		if err := os.WriteFile(path, []byte("<w:document><w:body></w:document>"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		var perr *errors.ParseError
		if !errors.As(err, &perr) || perr.Path != path {
			t.Errorf("Load() error = %v, want parse error at %s", err, path)
		}
	})

	t.Run("no body", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "document.xml")
		if err := os.WriteFile(path, []byte("<document/>"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Load() error = %v, want invalid input", err)
		}
	})

	t.Run("malformed notation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "draft.rln")
		if err := os.WriteFile(path, []byte("p { r {"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		var perr *errors.ParseError
		if !errors.As(err, &perr) || perr.Format != "notation" || perr.Path != path {
			t.Errorf("Load() error = %v, want notation parse error", err)
		}
	})
}

// TestBundleRejectsEscapingNames verifies that entries cannot leave the package.
func TestBundleRejectsEscapingNames(t *testing.T) {
	var buf bytes.Buffer
	zw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(zw)
	content := []byte("x")
	if err := tw.WriteHeader(&tar.Header{Name: "../evil.xml", Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "evil.tar.xz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Load() error = %v, want invalid input", err)
	}
}
