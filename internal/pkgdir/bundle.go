package pkgdir

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/redline/core/errors"
)

// maxEntrySize bounds a single bundle entry.
const maxEntrySize = 256 << 20

// bundleReader wraps a tar.Reader with decompression handling.
type bundleReader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

func openBundle(path string, kind Kind) (*bundleReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}

	var reader io.Reader
	var decompressor io.Closer
	switch kind {
	case KindBundleXZ:
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, &errors.ParseError{Format: "xz", Path: path, Message: err.Error(), Err: err}
		}
		reader = xzr
	case KindBundleGz:
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, &errors.ParseError{Format: "gzip", Path: path, Message: err.Error(), Err: err}
		}
		reader = gzr
		decompressor = gzr
	default:
		f.Close()
		return nil, errors.NewUnsupported("bundle format", path)
	}

	return &bundleReader{
		Reader:       tar.NewReader(reader),
		file:         f,
		decompressor: decompressor,
	}, nil
}

func (r *bundleReader) Close() error {
	var first error
	if r.decompressor != nil {
		first = r.decompressor.Close()
	}
	if err := r.file.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// readBundle collects the regular files of a bundle.
func readBundle(path string, kind Kind) (fileSet, error) {
	r, err := openBundle(path, kind)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fs := fileSet{}
	for {
		header, err := r.Next()
		if err == io.EOF {
			return fs, nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return nil, errors.NewValidation("path", "file name escapes the package: "+header.Name)
		}
		if err != nil {
			return nil, &errors.ParseError{Format: "tar", Path: path, Message: err.Error(), Err: err}
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		name, err := safeName(header.Name)
		if err != nil {
			return nil, err
		}
		if header.Size > maxEntrySize {
			return nil, errors.NewValidation("bundle", name+" is too large")
		}
		data, err := io.ReadAll(io.LimitReader(r, maxEntrySize))
		if err != nil {
			return nil, errors.NewIO("read", path+":"+name, err)
		}
		fs[name] = data
	}
}

// writeBundle writes the file set as a tar archive, xz- or gzip-compressed
// by kind. Entries are sorted so equal packages give equal archives.
func writeBundle(path string, kind Kind, fs fileSet) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewIO("create directory", filepath.Dir(path), err)
	}
	out, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.NewIO("close", path, cerr)
		}
	}()

	var compressor io.WriteCloser
	switch kind {
	case KindBundleXZ:
		if compressor, err = xz.NewWriter(out); err != nil {
			return errors.NewIO("compress", path, err)
		}
	case KindBundleGz:
		compressor = gzip.NewWriter(out)
	default:
		return errors.NewUnsupported("bundle format", path)
	}

	tw := tar.NewWriter(compressor)
	modTime := time.Unix(0, 0).UTC()
	for _, name := range fs.names() {
		clean, err := safeName(name)
		if err != nil {
			return err
		}
		data := fs[name]
		header := &tar.Header{
			Name:    clean,
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: modTime,
		}
		if err := tw.WriteHeader(header); err != nil {
			return errors.NewIO("write", path, err)
		}
		if _, err := tw.Write(data); err != nil {
			return errors.NewIO("write", path, err)
		}
	}
	if err := tw.Close(); err != nil {
		return errors.NewIO("write", path, err)
	}
	if err := compressor.Close(); err != nil {
		return errors.NewIO("compress", path, err)
	}
	return nil
}
