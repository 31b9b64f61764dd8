// SPDX-License-Identifier: AGPL-3.0-or-later
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sink receives records in emission order.
type Sink interface {
	io.Writer
	Close() error
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// WriterSink streams records to w. Close is a no-op.
func WriterSink(w io.Writer) Sink {
	return nopCloser{w}
}

// FileSink accumulates records and replaces the file at path on Close, so a
// failed run never leaves a truncated output file behind.
type FileSink struct {
	path string
	buf  bytes.Buffer
}

// NewFileSink returns a sink that writes to path when closed.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// Close writes everything received so far to the destination file.
func (s *FileSink) Close() error {
	return AtomicWrite(s.path, s.buf.Bytes())
}

// Open returns a FileSink for path, or a sink over stdout when path is empty
// or "-".
func Open(path string, stdout io.Writer) Sink {
	if path == "" || path == "-" {
		return WriterSink(stdout)
	}
	return NewFileSink(path)
}

// AtomicWrite writes content to path atomically by writing to a temp file and renaming it.
func AtomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".prin-tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("moving temp file to %s: %w", path, err)
	}
	return nil
}
