// Package document loads a file into an immutable, ordered sequence of lines.
package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Line is one newline-delimited run of bytes. It keeps its trailing '\n'
// unless it is an unterminated final line. Lines are never modified.
type Line []byte

// Document is the in-memory content of the file being viewed.
type Document struct {
	// Name is the path the document was loaded from, exactly as given.
	Name string

	lines []Line
	size  int
}

// LoadError reports a failure to read a document from disk.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads the file at path and splits it into lines.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	doc, err := Read(path, f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return doc, nil
}

// Read builds a document from r. Carriage returns are dropped wherever
// they occur; every other byte is kept as-is.
func Read(name string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromBytes(name, data), nil
}

// FromBytes builds a document from raw file content.
func FromBytes(name string, data []byte) *Document {
	clean := bytes.ReplaceAll(data, []byte{'\r'}, nil)

	doc := &Document{Name: name, size: len(clean)}
	for len(clean) > 0 {
		i := bytes.IndexByte(clean, '\n')
		if i < 0 {
			doc.lines = append(doc.lines, Line(clean))
			break
		}
		doc.lines = append(doc.lines, Line(clean[:i+1:i+1]))
		clean = clean[i+1:]
	}
	return doc
}

// FromLines builds a document from already split lines.
func FromLines(name string, lines ...string) *Document {
	doc := &Document{Name: name, lines: make([]Line, len(lines))}
	for i, l := range lines {
		doc.lines[i] = Line(l)
		doc.size += len(l)
	}
	return doc
}

// Len returns the number of lines.
func (d *Document) Len() int {
	return len(d.lines)
}

// Line returns line i. It panics if i is out of range.
func (d *Document) Line(i int) Line {
	return d.lines[i]
}

// Size returns the number of content bytes, excluding dropped carriage returns.
func (d *Document) Size() int {
	return d.size
}

// LastIndex returns the index of the final line, or 0 for an empty document.
func (d *Document) LastIndex() int {
	return max(len(d.lines)-1, 0)
}
