// SPDX-License-Identifier: AGPL-3.0-or-later
package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExcluded(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		rules []Rule
		want  bool
	}{
		{
			name:  "literal substring anywhere in path",
			path:  "foo/bar/baz",
			rules: []Rule{Literal("o/b")},
			want:  true,
		},
		{
			name:  "literal equals base name",
			path:  "pkg/node_modules",
			rules: []Rule{Literal("node_modules")},
			want:  true,
		},
		{
			name:  "extension literal matches suffix",
			path:  "src/foo.py",
			rules: []Rule{Literal(".py")},
			want:  true,
		},
		{
			name:  "extension literal is not a substring match",
			path:  "src/foo.pyc",
			rules: []Rule{Literal(".py")},
			want:  false,
		},
		{
			name:  "glob against base name",
			path:  "build/artifact.o",
			rules: []Rule{Glob("*.o")},
			want:  true,
		},
		{
			name:  "anchored glob does not act as substring",
			path:  "foo/bar/baz",
			rules: []Rule{Glob("*o/b")},
			want:  false,
		},
		{
			name:  "anchored glob matches exact tail",
			path:  "foo/b",
			rules: []Rule{Glob("*o/b")},
			want:  true,
		},
		{
			name:  "glob against stem",
			path:  "LICENSE.txt",
			rules: []Rule{Glob("LICENS?")},
			want:  true,
		},
		{
			name:  "dot prefix predicate",
			path:  "src/.env",
			rules: []Rule{Prefix(".")},
			want:  true,
		},
		{
			name:  "contains predicate ignores case",
			path:  "pkg/__PyCache__",
			rules: []Rule{Contains("cache")},
			want:  true,
		},
		{
			name:  "suffix predicate on name",
			path:  "prin.egg-info",
			rules: []Rule{Suffix("egg-info")},
			want:  true,
		},
		{
			name:  "parsed string with metachars is a glob",
			path:  "docs/LICENSE",
			rules: []Rule{Parse("LICENS*")},
			want:  true,
		},
		{
			name:  "no rules",
			path:  "anything.py",
			rules: nil,
			want:  false,
		},
		{
			name:  "later rule still applies",
			path:  "src/main.py",
			rules: []Rule{Literal("vendor"), Glob("*.md"), Literal("main")},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExcluded(tt.path, tt.rules))
		})
	}
}

func TestIsExcluded_OrderIndependent(t *testing.T) {
	rules := []Rule{Literal("vendor"), Glob("*.log"), Prefix(".")}
	reversed := []Rule{rules[2], rules[1], rules[0]}

	for _, p := range []string{"vendor/a.go", "app.log", ".git", "src/main.go"} {
		assert.Equal(t, IsExcluded(p, rules), IsExcluded(p, reversed), p)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		patterns []string
		want     bool
	}{
		{name: "empty list matches all", file: "whatever.bin", patterns: nil, want: true},
		{name: "dotted extension", file: "a.py", patterns: []string{".py"}, want: true},
		{name: "undotted extension", file: "a.py", patterns: []string{"py"}, want: true},
		{name: "no partial extension", file: "a.pyc", patterns: []string{".py"}, want: false},
		{name: "glob", file: "data.jsonl", patterns: []string{"*.json*"}, want: true},
		{name: "glob is anchored to name", file: "data.yaml", patterns: []string{"*.json*"}, want: false},
		{name: "extensionless sentinel", file: "LICENSE", patterns: []string{NoExtension}, want: true},
		{name: "sentinel skips dotted names", file: "a.py", patterns: []string{NoExtension}, want: false},
		{name: "extensionless not matched by default", file: "Dockerfile", patterns: DefaultExtensions(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchExtension(tt.file, tt.patterns))
		})
	}
}

func TestStem(t *testing.T) {
	assert.Equal(t, "main", Stem("main.py"))
	assert.Equal(t, "archive.tar", Stem("archive.tar.gz"))
	assert.Equal(t, ".bashrc", Stem(".bashrc"))
	assert.Equal(t, "trailing.", Stem("trailing."))
	assert.Equal(t, "LICENSE", Stem("LICENSE"))
}

func TestResolveExtensions(t *testing.T) {
	t.Run("defaults include docs", func(t *testing.T) {
		exts := ResolveExtensions(nil, false, false)
		assert.Contains(t, exts, ".py")
		assert.Contains(t, exts, ".md")
		assert.NotContains(t, exts, NoExtension)
	})

	t.Run("no docs", func(t *testing.T) {
		exts := ResolveExtensions(nil, true, false)
		assert.Contains(t, exts, ".py")
		assert.NotContains(t, exts, ".md")
	})

	t.Run("custom replaces defaults", func(t *testing.T) {
		exts := ResolveExtensions([]string{".rs"}, true, false)
		assert.Equal(t, []string{".rs"}, exts)
	})

	t.Run("extensionless appends sentinel", func(t *testing.T) {
		exts := ResolveExtensions([]string{".rs"}, false, true)
		assert.Equal(t, []string{".rs", NoExtension}, exts)
	})
}

func TestResolveExclusions(t *testing.T) {
	t.Run("no exclude wins", func(t *testing.T) {
		rules := ResolveExclusions(Options{NoExclude: true, Custom: []string{"x"}})
		assert.Empty(t, rules)
	})

	t.Run("defaults then custom then categories", func(t *testing.T) {
		rules := ResolveExclusions(Options{Custom: []string{"generated", "*.pb.go"}, NoIgnore: true})
		n := len(DefaultExclusions())
		require.Greater(t, len(rules), n+2)
		assert.Equal(t, DefaultExclusions(), rules[:n])
		assert.Equal(t, Literal("generated"), rules[n])
		assert.Equal(t, Glob("*.pb.go"), rules[n+1])
		assert.Contains(t, rules, Literal("tests"))
		assert.Contains(t, rules, Literal("poetry.lock"))
		assert.Contains(t, rules, Glob("*.png"))
	})

	t.Run("included categories are dropped", func(t *testing.T) {
		rules := ResolveExclusions(Options{IncludeTests: true, IncludeLock: true, IncludeBinary: true, NoIgnore: true})
		assert.Equal(t, DefaultExclusions(), rules)
	})

	t.Run("ignore files are appended", func(t *testing.T) {
		root := t.TempDir()
		home := t.TempDir()
		createFile(t, root, ".gitignore", "# comment\n\nsecret.txt\n*.gen.go\n")
		createFile(t, root, ".git/info/exclude", "scratch\n")
		createFile(t, home, ".config/git/ignore", "global-junk\n")

		rules := ResolveExclusions(Options{
			IncludeTests:  true,
			IncludeLock:   true,
			IncludeBinary: true,
			Paths:         []string{root, filepath.Join(root, "missing")},
			Home:          home,
		})
		tail := rules[len(DefaultExclusions()):]
		assert.Equal(t, []Rule{
			Literal("global-junk"),
			Literal("secret.txt"),
			Glob("*.gen.go"),
			Literal("scratch"),
		}, tail)
	})

	t.Run("no ignore skips ignore files", func(t *testing.T) {
		root := t.TempDir()
		createFile(t, root, ".gitignore", "secret.txt\n")
		rules := ResolveExclusions(Options{IncludeTests: true, IncludeLock: true, IncludeBinary: true, NoIgnore: true, Paths: []string{root}})
		assert.NotContains(t, rules, Literal("secret.txt"))
	})
}

func TestDescribe(t *testing.T) {
	got := Describe([]Rule{Prefix("."), Suffix("egg-info"), Contains("cache"), Literal("build"), Glob("*.o")})
	assert.Equal(t, `paths starting with ".", paths ending with "egg-info", paths containing "cache", build, *.o`, got)
}

func createFile(t *testing.T, dir, path string, content ...string) {
	t.Helper()
	fullPath := filepath.Join(dir, path)
	err := os.MkdirAll(filepath.Dir(fullPath), 0o755)
	require.NoError(t, err)

	data := ""
	if len(content) > 0 {
		data = content[0]
	}
	err = os.WriteFile(fullPath, []byte(data), 0o644)
	require.NoError(t, err)
}
