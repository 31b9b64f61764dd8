// SPDX-License-Identifier: AGPL-3.0-or-later

// Package localfs adapts the local filesystem to source.Adapter.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/bartekus/prin/internal/content"
	"github.com/bartekus/prin/internal/source"
)

// FS walks the local filesystem. Relative roots resolve against Dir.
type FS struct {
	Dir string
}

// New returns an adapter rooted at the working directory cwd.
func New(cwd string) *FS {
	return &FS{Dir: cwd}
}

var _ source.Adapter = (*FS)(nil)

func (*FS) Name() string { return "local" }

// ResolveRoot makes spec absolute, resolving symlinks where the path exists.
func (f *FS) ResolveRoot(_ context.Context, spec string) (string, error) {
	p := filepath.FromSlash(spec)
	if p == "" {
		p = "."
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(f.Dir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", spec, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return filepath.ToSlash(filepath.Clean(abs)), nil
}

// ListDir lists dir. Symlinks and special files are reported as source.Other.
func (f *FS) ListDir(_ context.Context, dir string) ([]source.Entry, error) {
	entries, err := os.ReadDir(filepath.FromSlash(dir))
	if err != nil {
		return nil, classify(dir, err)
	}

	out := make([]source.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, source.NewEntry(path.Join(dir, e.Name()), kindOf(e.Type())))
	}
	return out, nil
}

// ReadFile returns the file's bytes, or nil when it cannot be read.
func (f *FS) ReadFile(_ context.Context, p string) ([]byte, error) {
	data, err := os.ReadFile(filepath.FromSlash(p))
	if err != nil {
		return nil, nil
	}
	return data, nil
}

// IsEmpty reports whether p is a regular file with semantically empty content.
func (f *FS) IsEmpty(_ context.Context, p string) (bool, error) {
	info, err := os.Stat(filepath.FromSlash(p))
	if err != nil || !info.Mode().IsRegular() {
		return false, nil
	}
	data, err := os.ReadFile(filepath.FromSlash(p))
	if err != nil {
		return false, nil
	}
	return content.IsSemanticallyEmpty(data), nil
}

func classify(dir string, readErr error) error {
	info, err := os.Stat(filepath.FromSlash(dir))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", dir, source.ErrNotFound)
	case err == nil && !info.IsDir():
		return fmt.Errorf("%s: %w", dir, source.ErrNotADirectory)
	default:
		return fmt.Errorf("listing %s: %w", dir, readErr)
	}
}

func kindOf(mode fs.FileMode) source.Kind {
	switch {
	case mode.IsDir():
		return source.Directory
	case mode.IsRegular():
		return source.File
	default:
		return source.Other
	}
}
