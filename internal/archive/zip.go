// Package archive encodes ordered (member name, content) pairs into ZIP
// byte strings for session export.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// newFlateWriter swaps the standard library's deflate implementation for
// klauspost/compress's, which produces smaller archives at comparable
// speed. archive/zip already registers a process-global zip.Deflate
// compressor and panics on a second global registration, so this is
// registered on each zip.Writer instead.
func newFlateWriter(w io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(w, flate.DefaultCompression)
}

// Entry is one member to place in the archive: its name and content bytes.
type Entry struct {
	Name    string
	Content []byte
}

// Encode produces a ZIP byte string containing entries in the order given.
// Member order is preserved exactly, so identical input produces
// byte-equivalent archives modulo per-entry timestamps.
func Encode(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	w.RegisterCompressor(zip.Deflate, newFlateWriter)

	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:   entry.Name,
			Method: zip.Deflate,
		}
		writer, err := w.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("archive: create entry %q: %w", entry.Name, err)
		}
		if _, err := writer.Write(entry.Content); err != nil {
			return nil, fmt.Errorf("archive: write entry %q: %w", entry.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("archive: close writer: %w", err)
	}
	return buf.Bytes(), nil
}
