// SPDX-License-Identifier: AGPL-3.0-or-later

// Package match holds the string-level matching primitives shared by the
// filter engine: shell-style (fnmatch) globbing and the glob/extension
// classifiers used to decide how a pattern is interpreted.
package match

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// GlobChars are the metacharacters that make a string glob-flavored.
const GlobChars = "*?![]"

const compiledCacheSize = 4096

// compiled caches translated patterns; a nil value records a pattern that
// does not translate to a valid expression.
var compiled, _ = lru.New[string, *regexp.Regexp](compiledCacheSize)

// IsGlob reports whether s contains any glob metacharacter.
func IsGlob(s string) bool {
	return strings.ContainsAny(s, GlobChars)
}

// IsExtension reports whether s looks like a file extension: a leading dot
// and no path separator.
func IsExtension(s string) bool {
	return strings.HasPrefix(s, ".") && !strings.Contains(s, "/")
}

// Glob reports whether name matches the shell-style pattern.
//
// Unlike path.Match, '*' and '?' also match '/', so a pattern is tested
// against the whole string. Bracket classes accept '!' for negation. The
// comparison is case-sensitive. Malformed patterns never match.
func Glob(name, pattern string) bool {
	re, ok := compiled.Get(pattern)
	if !ok {
		var err error
		re, err = regexp.Compile(translate(pattern))
		if err != nil {
			re = nil
		}
		compiled.Add(pattern, re)
	}
	if re == nil {
		return false
	}
	return re.MatchString(name)
}

// translate converts a shell pattern into an anchored regular expression.
func translate(pat string) string {
	var b strings.Builder
	b.WriteString(`(?s)^`)

	n := len(pat)
	for i := 0; i < n; {
		c := pat[i]
		i++
		switch c {
		case '*':
			for i < n && pat[i] == '*' {
				i++
			}
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i
			if j < n && pat[j] == '!' {
				j++
			}
			if j < n && pat[j] == ']' {
				j++
			}
			for j < n && pat[j] != ']' {
				j++
			}
			if j >= n {
				b.WriteString(`\[`)
				continue
			}
			writeClass(&b, pat[i:j])
			i = j + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString("$")
	return b.String()
}

func writeClass(b *strings.Builder, body string) {
	b.WriteByte('[')
	switch {
	case strings.HasPrefix(body, "!"):
		b.WriteByte('^')
		body = body[1:]
	case strings.HasPrefix(body, "^"):
		b.WriteString(`\^`)
		body = body[1:]
	}
	for i := 0; i < len(body); i++ {
		switch c := body[i]; c {
		case '\\', '[', ']':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(']')
}
