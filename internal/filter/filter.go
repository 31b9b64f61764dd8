// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filter decides which entries a traversal considers: exclusion
// rules, extension filters, and the resolvers that assemble both from
// defaults, user input and ignore files.
package filter

import (
	"path"
	"strings"

	"github.com/bartekus/prin/internal/match"
)

// Options defines how the effective exclusion list is assembled.
type Options struct {
	// NoExclude disables every exclusion, overriding all other fields.
	NoExclude bool

	// Custom holds user-supplied excludes, parsed with Parse.
	Custom []string

	IncludeTests  bool
	IncludeLock   bool
	IncludeBinary bool

	// NoIgnore disables ignore-file processing.
	NoIgnore bool

	// Paths are the local traversal paths searched for .gitignore and
	// .git/info/exclude.
	Paths []string

	// Home is the user's home directory, used for ~/.config/git/ignore.
	// Empty skips the global ignore file.
	Home string
}

// ResolveExclusions returns the effective exclusion list: defaults, custom
// excludes, the test/lock/binary sets that were not opted into, then ignore
// file lines.
func ResolveExclusions(opts Options) []Rule {
	if opts.NoExclude {
		return []Rule{}
	}

	rules := DefaultExclusions()
	rules = append(rules, ParseAll(opts.Custom)...)

	if !opts.IncludeTests {
		rules = append(rules, DefaultTestExclusions()...)
	}
	if !opts.IncludeLock {
		rules = append(rules, DefaultLockExclusions()...)
	}
	if !opts.IncludeBinary {
		rules = append(rules, DefaultBinaryExclusions()...)
	}
	if !opts.NoIgnore {
		rules = append(rules, IgnoreFileRules(opts.Paths, opts.Home)...)
	}
	return rules
}

// ResolveExtensions returns custom when non-empty, otherwise the default
// extensions plus documentation extensions unless noDocs is set. When
// extensionless is set the NoExtension sentinel is appended.
func ResolveExtensions(custom []string, noDocs, extensionless bool) []string {
	var exts []string
	if len(custom) > 0 {
		exts = append(exts, custom...)
	} else {
		exts = DefaultExtensions()
		if !noDocs {
			exts = append(exts, DefaultDocExtensions()...)
		}
	}
	if extensionless {
		exts = append(exts, NoExtension)
	}
	return exts
}

// IsExcluded reports whether any rule matches p, a slash-separated path.
// Each rule is tried against the base name, the full path and the stem.
func IsExcluded(p string, rules []Rule) bool {
	if len(rules) == 0 {
		return false
	}
	name := path.Base(p)
	stem := Stem(name)
	entryIsGlob := match.IsGlob(p)
	for _, r := range rules {
		if r.matches(p, name, stem, entryIsGlob) {
			return true
		}
	}
	return false
}

// MatchExtension returns true if patterns is empty OR name matches one of them.
func MatchExtension(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		switch {
		case pattern == NoExtension:
			if !strings.Contains(name, ".") {
				return true
			}
		case match.IsGlob(pattern):
			if match.Glob(name, pattern) {
				return true
			}
		default:
			if strings.HasSuffix(name, "."+strings.TrimPrefix(pattern, ".")) {
				return true
			}
		}
	}
	return false
}

// Stem returns name without its final extension. Leading-dot names and names
// ending in a dot are returned unchanged.
func Stem(name string) string {
	i := strings.LastIndex(name, ".")
	if i > 0 && i < len(name)-1 {
		return name[:i]
	}
	return name
}

// Describe lists rules for help text.
func Describe(rules []Rule) string {
	parts := make([]string, 0, len(rules))
	for _, r := range rules {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ", ")
}
