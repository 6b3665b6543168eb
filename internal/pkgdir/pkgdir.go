// Package pkgdir reads and writes document packages on disk.
//
// A package is stored as a set of files laid out like the word/ folder of a
// document archive:
//
//	document.xml
//	footnotes.xml
//	endnotes.xml
//	_rels/document.xml.rels
//	_rels/footnotes.xml.rels
//	media/image1.png
//
// Part files may be xz-compressed under an added .xz suffix. The set lives
// in a directory or in a .tar.xz or .tar.gz bundle. A lone .xml or .xml.xz
// file holds the main part only, and a .rln file holds body content in
// element notation.
package pkgdir

import (
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/notation"
	"github.com/FocuswithJustin/redline/core/wml"
	"github.com/FocuswithJustin/redline/core/xml"
	"github.com/FocuswithJustin/redline/internal/logging"
)

const (
	mainName      = "document.xml"
	footnotesName = "footnotes.xml"
	endnotesName  = "endnotes.xml"
	relsDir       = "_rels"
	xzSuffix      = ".xz"
)

// Kind is a storage layout.
type Kind int

const (
	// KindDir is a directory of part files.
	KindDir Kind = iota
	// KindBundleXZ is a tar archive compressed with xz.
	KindBundleXZ
	// KindBundleGz is a tar archive compressed with gzip.
	KindBundleGz
	// KindPart is a lone main part, optionally xz-compressed.
	KindPart
	// KindNotation is body content in element notation.
	KindNotation
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "directory"
	case KindBundleXZ:
		return "tar.xz bundle"
	case KindBundleGz:
		return "tar.gz bundle"
	case KindPart:
		return "part"
	case KindNotation:
		return "notation"
	default:
		return "unknown"
	}
}

// KindOf picks the layout for path from its name. Names without a known
// extension are directories.
func KindOf(name string) Kind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return KindBundleXZ
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return KindBundleGz
	case strings.HasSuffix(lower, ".xml"), strings.HasSuffix(lower, ".xml.xz"):
		return KindPart
	case strings.HasSuffix(lower, ".rln"):
		return KindNotation
	default:
		return KindDir
	}
}

// Load reads a package from path. An existing directory is always read as a
// directory; other paths are read according to KindOf, with unknown files
// taken as a lone part.
func Load(path string) (*wml.Package, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewIO("stat", path, err)
	}
	kind := KindOf(path)
	if info.IsDir() {
		kind = KindDir
	} else if kind == KindDir {
		kind = KindPart
	}

	var pkg *wml.Package
	switch kind {
	case KindDir:
		var files fileSet
		if files, err = readDir(path); err == nil {
			pkg, err = files.pkg()
		}
	case KindBundleXZ, KindBundleGz:
		var files fileSet
		if files, err = readBundle(path, kind); err == nil {
			pkg, err = files.pkg()
		}
	case KindNotation:
		pkg, err = loadNotation(path)
	default:
		pkg, err = loadPart(path)
	}
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) && perr.Path == "" {
			perr.Path = path
		}
		return nil, err
	}
	logging.Debug("package loaded", "path", path, "kind", kind.String(), "media", len(pkg.Media))
	return pkg, nil
}

// Save writes pkg to path in the layout KindOf picks. Part files of a
// directory or bundle are xz-compressed when compress is set. Notation and
// lone parts hold the main part only; saving notes or media to them fails.
func Save(pkg *wml.Package, path string, compress bool) error {
	if pkg == nil || pkg.Main == nil || pkg.Main.Root == nil {
		return errors.NewValidation("package", "no main part")
	}
	kind := KindOf(path)
	switch kind {
	case KindDir:
		return writeDir(path, filesOf(pkg, compress))
	case KindBundleXZ, KindBundleGz:
		return writeBundle(path, kind, filesOf(pkg, compress))
	}

	if pkg.Footnotes != nil || pkg.Endnotes != nil || len(pkg.Media) > 0 || len(pkg.Main.Rels) > 0 {
		return errors.NewUnsupported(kind.String()+" output", "notes, relationships and media need a directory or bundle")
	}
	var data []byte
	if kind == KindNotation {
		body := pkg.Body()
		if body == nil {
			return errors.NewValidation("package", "no w:body")
		}
		data = []byte(notation.Format(body.Children...) + "\n")
	} else {
		data = xml.Marshal(pkg.Main.Root, xml.MarshalOptions{Declaration: true})
		if strings.HasSuffix(strings.ToLower(path), xzSuffix) {
			var err error
			if data, err = compressXZ(data); err != nil {
				return errors.NewIO("compress", path, err)
			}
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

func loadNotation(path string) (*wml.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return notation.Document(string(data))
}

func loadPart(path string) (*wml.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	if strings.HasSuffix(strings.ToLower(path), xzSuffix) {
		if data, err = decompressXZ(data); err != nil {
			return nil, &errors.ParseError{Format: "xz", Path: path, Message: err.Error(), Err: err}
		}
	}
	root, err := parsePart(data, mainName)
	if err != nil {
		return nil, err
	}
	pkg := wml.NewPackage(root)
	if pkg.Body() == nil {
		return nil, errors.NewParse("XML", path, "no w:body element")
	}
	return pkg, nil
}

func parsePart(data []byte, name string) (*wml.Element, error) {
	root, err := xml.ParseElement(data)
	if err != nil {
		return nil, &errors.ParseError{Format: "XML", Message: name + ": " + err.Error(), Err: err}
	}
	return root, nil
}

func compressXZ(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressXZ(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// fileSet maps slash-separated names relative to the package root to file
// contents.
type fileSet map[string][]byte

// part returns the named part, decompressing a .xz variant when only that
// exists.
func (fs fileSet) part(name string) ([]byte, bool, error) {
	if data, ok := fs[name]; ok {
		return data, true, nil
	}
	data, ok := fs[name+xzSuffix]
	if !ok {
		return nil, false, nil
	}
	out, err := decompressXZ(data)
	if err != nil {
		return nil, true, &errors.ParseError{Format: "xz", Message: name + xzSuffix + ": " + err.Error(), Err: err}
	}
	return out, true, nil
}

func isPartFile(name string) bool {
	base := strings.TrimSuffix(name, xzSuffix)
	switch base {
	case mainName, footnotesName, endnotesName:
		return true
	}
	return strings.HasPrefix(name, relsDir+"/")
}

// pkg assembles a package from the file set. Files other than parts and
// relationship lists become media.
func (fs fileSet) pkg() (*wml.Package, error) {
	main, err := fs.loadPart(mainName)
	if err != nil {
		return nil, err
	}
	if main == nil {
		return nil, errors.NewNotFound("part", mainName)
	}
	pkg := &wml.Package{Main: main, Media: map[string][]byte{}}
	if pkg.Body() == nil {
		return nil, &errors.ParseError{Format: "XML", Message: mainName + ": no w:body element"}
	}
	if pkg.Footnotes, err = fs.loadPart(footnotesName); err != nil {
		return nil, err
	}
	if pkg.Endnotes, err = fs.loadPart(endnotesName); err != nil {
		return nil, err
	}
	for name, data := range fs {
		if !isPartFile(name) {
			pkg.Media[name] = data
		}
	}
	return pkg, nil
}

func (fs fileSet) loadPart(name string) (*wml.Part, error) {
	data, ok, err := fs.part(name)
	if err != nil || !ok {
		return nil, err
	}
	root, err := parsePart(data, name)
	if err != nil {
		return nil, err
	}
	p := &wml.Part{URI: "word/" + name, Root: root}
	relsName := relsDir + "/" + name + ".rels"
	if data, ok, err := fs.part(relsName); err != nil {
		return nil, err
	} else if ok {
		if p.Rels, err = xml.ParseRels(data); err != nil {
			return nil, &errors.ParseError{Format: "XML", Message: relsName + ": " + err.Error(), Err: err}
		}
	}
	return p, nil
}

// filesOf lays out pkg as a file set.
func filesOf(pkg *wml.Package, compress bool) fileSet {
	fs := fileSet{}
	put := func(name string, data []byte) {
		if compress {
			if z, err := compressXZ(data); err == nil {
				fs[name+xzSuffix] = z
				return
			}
		}
		fs[name] = data
	}
	for _, p := range []*wml.Part{pkg.Main, pkg.Footnotes, pkg.Endnotes} {
		if p == nil || p.Root == nil {
			continue
		}
		name := path.Base(p.URI)
		put(name, xml.Marshal(p.Root, xml.MarshalOptions{Declaration: true}))
		if len(p.Rels) > 0 {
			put(relsDir+"/"+name+".rels", xml.MarshalRels(p.Rels))
		}
	}
	for target, data := range pkg.Media {
		fs[target] = data
	}
	return fs
}

// names returns the file names in a stable order.
func (fs fileSet) names() []string {
	out := make([]string, 0, len(fs))
	for name := range fs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// safeName rejects names that would escape the package root.
func safeName(name string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(name, "./"))
	if clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.NewValidation("path", "file name escapes the package: "+name)
	}
	return clean, nil
}

func readDir(root string) (fileSet, error) {
	fs := fileSet{}
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		fs[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return nil, errors.NewIO("read", root, err)
	}
	return fs, nil
}

func writeDir(root string, fs fileSet) error {
	for _, name := range fs.names() {
		clean, err := safeName(name)
		if err != nil {
			return err
		}
		dst := filepath.Join(root, filepath.FromSlash(clean))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return errors.NewIO("create directory", filepath.Dir(dst), err)
		}
		if err := os.WriteFile(dst, fs[name], 0o644); err != nil {
			return errors.NewIO("write", dst, err)
		}
	}
	return nil
}
