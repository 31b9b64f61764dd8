// SPDX-License-Identifier: AGPL-3.0-or-later
package printer

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/prin/internal/filter"
	"github.com/bartekus/prin/internal/render"
	"github.com/bartekus/prin/internal/source/localfs"
)

var recordOpen = regexp.MustCompile(`(?m)^<([^/>][^>]*?)/?>$`)

// emittedPaths lists the paths of XML records in output order.
func emittedPaths(out string) []string {
	var paths []string
	for _, m := range recordOpen.FindAllStringSubmatch(out, -1) {
		paths = append(paths, m[1])
	}
	return paths
}

func defaultOptions() Options {
	return Options{Extensions: filter.ResolveExtensions(nil, false, false)}
}

func run(t *testing.T, p *Printer, jobs ...Job) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	var errs []error
	for _, job := range jobs {
		if p.Exhausted() {
			break
		}
		if err := p.Run(context.Background(), &buf, job); err != nil {
			errs = append(errs, err)
		}
	}
	return buf.String(), errors.Join(errs...)
}

func TestPrinter_ProjectScenario(t *testing.T) {
	src := newMemSource("mem", map[string]string{
		"src/main.py":      "print('hello')\n",
		"docs/readme.md":   "# Readme\n",
		"build/artifact.o": "\x7fELF\x00\x01",
	})
	p := New(render.XML{}, defaultOptions())

	out, err := run(t, p, Job{Source: src, Exclusions: filter.DefaultExclusions()})
	require.NoError(t, err)
	assert.Equal(t,
		"<docs/readme.md>\n# Readme\n</docs/readme.md>\n"+
			"<src/main.py>\nprint('hello')\n</src/main.py>\n", out)
	assert.NotContains(t, src.listed, "build", "excluded directories are never listed")
}

func TestPrinter_Ordering(t *testing.T) {
	src := newMemSource("mem", map[string]string{
		"B.py":     "b = 1\n",
		"a.py":     "a = 1\n",
		"c/z.py":   "z = 1\n",
		"C2/y.py":  "y = 1\n",
		"c/A/x.py": "x = 1\n",
	})
	p := New(render.XML{}, defaultOptions())

	out, err := run(t, p, Job{Source: src})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "B.py", "c/z.py", "c/A/x.py", "C2/y.py"}, emittedPaths(out))
}

func TestPrinter_ExplicitFile(t *testing.T) {
	files := map[string]string{"LICENSE": "MIT License\n", "main.go": "package main\n"}

	t.Run("named root bypasses filters", func(t *testing.T) {
		p := New(render.XML{}, defaultOptions())
		out, err := run(t, p, Job{Source: newMemSource("mem", files), Roots: []string{"LICENSE"}})
		require.NoError(t, err)
		assert.Equal(t, "<LICENSE>\nMIT License\n</LICENSE>\n", out)
	})

	t.Run("traversal applies extension filter", func(t *testing.T) {
		p := New(render.XML{}, defaultOptions())
		out, err := run(t, p, Job{Source: newMemSource("mem", files)})
		require.NoError(t, err)
		assert.Equal(t, []string{"main.go"}, emittedPaths(out))
	})

	t.Run("named root bypasses exclusions", func(t *testing.T) {
		p := New(render.XML{}, defaultOptions())
		src := newMemSource("mem", map[string]string{".env.py": "SECRET = 1\n"})
		out, err := run(t, p, Job{Source: src, Roots: []string{".env.py"}, Exclusions: filter.DefaultExclusions()})
		require.NoError(t, err)
		assert.Equal(t, []string{".env.py"}, emittedPaths(out))
	})
}

func TestPrinter_IncludeEmpty(t *testing.T) {
	files := map[string]string{
		"pkg/__init__.py": "from .core import run\n__all__ = ['run']\n",
		"pkg/core.py":     "def run():\n    return 1\n",
		"pkg/blank.py":    "",
	}

	p := New(render.XML{}, defaultOptions())
	out, err := run(t, p, Job{Source: newMemSource("mem", files)})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/core.py"}, emittedPaths(out))

	opts := defaultOptions()
	opts.IncludeEmpty = true
	p = New(render.XML{}, opts)
	out, err = run(t, p, Job{Source: newMemSource("mem", files)})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/__init__.py", "pkg/blank.py", "pkg/core.py"}, emittedPaths(out))
}

func TestPrinter_Budget(t *testing.T) {
	first := newMemSource("one", map[string]string{"a.py": "a()\n", "b.py": "b()\n"})
	second := newMemSource("two", map[string]string{"c.py": "c()\n", "d.py": "d()\n"})
	third := newMemSource("three", map[string]string{"e.py": "e()\n"})

	opts := defaultOptions()
	opts.MaxFiles = 3
	p := New(render.XML{}, opts)

	out, err := run(t, p,
		Job{Source: first},
		Job{Source: second, Roots: []string{"", "."}},
		Job{Source: third},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.py", "c.py"}, emittedPaths(out))
	assert.Equal(t, 3, p.Emitted())
	assert.True(t, p.Exhausted())
	assert.Len(t, second.listed, 1, "traversal stops once the budget is spent")
	assert.Empty(t, third.listed)
}

func TestPrinter_BudgetUnlimited(t *testing.T) {
	p := New(render.XML{}, defaultOptions())
	_, err := run(t, p, Job{Source: newMemSource("mem", map[string]string{"a.py": "a()\n", "b.py": "b()\n"})})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Emitted())
	assert.False(t, p.Exhausted())
}

func TestPrinter_AtMostOnce(t *testing.T) {
	src := newMemSource("mem", map[string]string{"src/main.py": "main()\n", "src/util.py": "util()\n"})
	p := New(render.XML{}, defaultOptions())

	out, err := run(t, p,
		Job{Source: src, Roots: []string{"src/main.py", "", "src"}},
		Job{Source: src, Roots: []string{"src/util.py"}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.py", "src/util.py"}, emittedPaths(out))
}

func TestPrinter_SameNameDifferentSources(t *testing.T) {
	p := New(render.XML{}, defaultOptions())
	out, err := run(t, p,
		Job{Source: newMemSource("one", map[string]string{"a.py": "one()\n"})},
		Job{Source: newMemSource("two", map[string]string{"a.py": "two()\n"})},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "a.py"}, emittedPaths(out))
}

func TestPrinter_OnlyHeaders(t *testing.T) {
	src := newMemSource("mem", map[string]string{"a.py": "a()\n", "b/c.go": "package b\n"})
	opts := defaultOptions()
	opts.OnlyHeaders = true
	p := New(render.XML{}, opts)

	out, err := run(t, p, Job{Source: src})
	require.NoError(t, err)
	assert.Equal(t, "<a.py>\n</a.py>\n<b/c.go>\n</b/c.go>\n", out)
	assert.Zero(t, src.reads)
}

func TestPrinter_Binary(t *testing.T) {
	src := newMemSource("mem", map[string]string{"logo.png": "\x89PNG\r\n\x1a\n\x00\x00"})
	p := New(render.XML{}, Options{})

	out, err := run(t, p, Job{Source: src})
	require.NoError(t, err)
	assert.Equal(t, "<logo.png/>\n", out)
}

func TestPrinter_Markdown(t *testing.T) {
	src := newMemSource("mem", map[string]string{"a.py": "x = 1"})
	p := New(render.Markdown{}, defaultOptions())

	out, err := run(t, p, Job{Source: src})
	require.NoError(t, err)
	assert.Equal(t, "# FILE: a.py\n============\nx = 1\n\n---\n", out)
}

func TestPrinter_MissingRootSkipped(t *testing.T) {
	src := newMemSource("mem", map[string]string{"a.py": "a()\n"})
	p := New(render.XML{}, defaultOptions())

	out, err := run(t, p, Job{Source: src, Roots: []string{"nope", "a.py"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, emittedPaths(out))
}

func TestPrinter_RootFailure(t *testing.T) {
	src := newMemSource("mem", map[string]string{"bad/x.py": "x()\n", "good/y.py": "y()\n"})
	boom := errors.New("boom")
	src.listErr["bad"] = boom
	src.listErr["locked"] = &fs.PathError{Op: "open", Path: "locked", Err: fs.ErrPermission}
	p := New(render.XML{}, defaultOptions())

	out, err := run(t, p, Job{Source: src, Roots: []string{"bad", "locked", "good"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var rootErr *RootError
	require.True(t, errors.As(err, &rootErr))
	assert.Equal(t, "bad", rootErr.Root)
	assert.Equal(t, "mem", rootErr.Source)

	assert.Equal(t, []string{"good/y.py"}, emittedPaths(out), "later roots still run")
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("disk full")
}

func TestPrinter_WriteFailureStopsRun(t *testing.T) {
	src := newMemSource("mem", map[string]string{"a.py": "a()\n", "b.py": "b()\n", "c/d.py": "d()\n"})
	p := New(render.XML{}, defaultOptions())
	w := &failingWriter{}

	err := p.Run(context.Background(), w, Job{Source: src, Roots: []string{"", "c"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, w.writes)
	assert.Zero(t, p.Emitted())

	var rootErr *RootError
	assert.False(t, errors.As(err, &rootErr))
}

func TestRelPath(t *testing.T) {
	tests := []struct {
		root, p, want string
	}{
		{root: "", p: "src/a.py", want: "src/a.py"},
		{root: "src", p: "src/a.py", want: "a.py"},
		{root: "src", p: "srcx/a.py", want: "srcx/a.py"},
		{root: "/tmp/x", p: "/tmp/x/LICENSE", want: "LICENSE"},
		{root: "/tmp/x/LICENSE", p: "/tmp/x/LICENSE", want: "LICENSE"},
		{root: "/", p: "/etc/hosts", want: "etc/hosts"},
	}
	for _, tt := range tests {
		t.Run(tt.root+"|"+tt.p, func(t *testing.T) {
			assert.Equal(t, tt.want, relPath(tt.root, tt.p))
		})
	}
}

func createFile(t *testing.T, dir, path string, content ...string) {
	t.Helper()
	full := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	data := ""
	if len(content) > 0 {
		data = content[0]
	}
	require.NoError(t, os.WriteFile(full, []byte(data), 0o644))
}

func TestPrinter_LocalTree(t *testing.T) {
	// A root under a directory whose name matches a default exclusion is
	// still walked: rules see paths relative to the root.
	dir := filepath.Join(t.TempDir(), "cache-home", "project")
	createFile(t, dir, "src/main.py", "print('hello')\n")
	createFile(t, dir, "docs/readme.md", "# Readme\n")
	createFile(t, dir, "build/artifact.o", "\x00\x01")
	createFile(t, dir, "LICENSE", "MIT\n")
	createFile(t, dir, "node_modules/pkg/index.js", "module.exports = 1\n")

	exclusions := filter.ResolveExclusions(filter.Options{NoIgnore: true})
	fsys := localfs.New(dir)

	p := New(render.XML{}, defaultOptions())
	out, err := run(t, p, Job{Source: fsys, Exclusions: exclusions})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/readme.md", "src/main.py"}, emittedPaths(out))

	p = New(render.XML{}, defaultOptions())
	out, err = run(t, p, Job{Source: fsys, Roots: []string{"LICENSE"}, Exclusions: exclusions})
	require.NoError(t, err)
	assert.Equal(t, "<LICENSE>\nMIT\n</LICENSE>\n", out)
}
