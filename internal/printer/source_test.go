// SPDX-License-Identifier: AGPL-3.0-or-later
package printer

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/bartekus/prin/internal/content"
	"github.com/bartekus/prin/internal/source"
)

// memSource is an in-memory source.Adapter. Directories are implied by file
// paths; the root is "".
type memSource struct {
	name    string
	files   map[string]string
	dirs    map[string]bool
	listErr map[string]error

	listed []string
	reads  int
}

func newMemSource(name string, files map[string]string) *memSource {
	m := &memSource{name: name, files: files, dirs: map[string]bool{"": true}, listErr: map[string]error{}}
	for p := range files {
		for d := parent(p); d != ""; d = parent(d) {
			m.dirs[d] = true
		}
	}
	return m
}

func parent(p string) string {
	d := path.Dir(p)
	if d == "." {
		return ""
	}
	return d
}

func (m *memSource) Name() string { return m.name }

func (m *memSource) ResolveRoot(_ context.Context, spec string) (string, error) {
	spec = strings.Trim(spec, "/")
	if spec == "." {
		return "", nil
	}
	return spec, nil
}

func (m *memSource) ListDir(_ context.Context, dir string) ([]source.Entry, error) {
	m.listed = append(m.listed, dir)
	if err, ok := m.listErr[dir]; ok {
		return nil, err
	}
	if _, ok := m.files[dir]; ok {
		return nil, fmt.Errorf("%s: %w", dir, source.ErrNotADirectory)
	}
	if !m.dirs[dir] {
		return nil, fmt.Errorf("%s: %w", dir, source.ErrNotFound)
	}

	var out []source.Entry
	for d := range m.dirs {
		if d != "" && parent(d) == dir {
			out = append(out, source.NewEntry(d, source.Directory))
		}
	}
	for f := range m.files {
		if parent(f) == dir {
			out = append(out, source.NewEntry(f, source.File))
		}
	}
	return out, nil
}

func (m *memSource) ReadFile(_ context.Context, p string) ([]byte, error) {
	m.reads++
	return []byte(m.files[p]), nil
}

func (m *memSource) IsEmpty(_ context.Context, p string) (bool, error) {
	return content.IsSemanticallyEmpty([]byte(m.files[p])), nil
}
