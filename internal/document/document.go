// Package document provides the read-only handle every extraction backend works from.
package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Document is an opened source file. It is immutable and safe to share between
// backends; each backend takes its own reader.
type Document struct {
	path string
	f    *os.File
	size int64
}

// Open acquires the file at path. The caller must Close the returned document.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	return &Document{path: path, f: f, size: st.Size()}, nil
}

// Path returns the path the document was opened from.
func (d *Document) Path() string { return d.path }

// Name returns the base filename.
func (d *Document) Name() string { return filepath.Base(d.path) }

// Size returns the file size in bytes.
func (d *Document) Size() int64 { return d.size }

// Reader returns a fresh reader positioned at the start of the document.
// Readers do not share offsets, so backends never interfere with each other.
func (d *Document) Reader() *io.SectionReader {
	return io.NewSectionReader(d.f, 0, d.size)
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	return d.f.Close()
}
