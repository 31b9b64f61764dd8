// SPDX-License-Identifier: AGPL-3.0-or-later

// Package source defines the directory-entry model shared by every source of
// files and the Adapter contract the printer walks.
package source

import (
	"context"
	"errors"
	"path"
)

// Kind classifies a directory entry.
type Kind int

const (
	Other Kind = iota
	Directory
	File
)

func (k Kind) String() string {
	switch k {
	case Directory:
		return "dir"
	case File:
		return "file"
	default:
		return "other"
	}
}

// Entry is one child of a listed directory. Path is slash-separated.
type Entry struct {
	Path string
	Name string
	Kind Kind
}

// NewEntry builds an entry whose name is the last element of p.
func NewEntry(p string, kind Kind) Entry {
	return Entry{Path: p, Name: path.Base(p), Kind: kind}
}

var (
	// ErrNotADirectory is returned by ListDir when the path names a file.
	// Callers treat the path as an explicitly requested file.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNotFound is returned by ListDir when the path does not exist.
	// Callers skip the path.
	ErrNotFound = errors.New("not found")
)

// Adapter is a pluggable source of directory and file data.
//
// ReadFile reports unreadable files as empty content with a nil error; a
// non-nil error from ReadFile, IsEmpty or ResolveRoot is a hard failure that
// aborts the current root.
type Adapter interface {
	// Name identifies the source in diagnostics and de-duplication keys.
	Name() string
	// ResolveRoot turns a caller-supplied specifier into a canonical root.
	ResolveRoot(ctx context.Context, spec string) (string, error)
	// ListDir lists the immediate children of dir.
	ListDir(ctx context.Context, dir string) ([]Entry, error)
	// ReadFile returns the raw bytes of the file at p.
	ReadFile(ctx context.Context, p string) ([]byte, error)
	// IsEmpty reports whether the file at p is semantically empty.
	IsEmpty(ctx context.Context, p string) (bool, error)
}
