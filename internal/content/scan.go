// SPDX-License-Identifier: AGPL-3.0-or-later
package content

import (
	"strings"
)

type tokKind int

const (
	tokName tokKind = iota
	tokString
	tokNumber
	tokOp
)

type token struct {
	kind   tokKind
	text   string
	prefix string
}

func (t token) is(kind tokKind, text string) bool {
	return t.kind == kind && t.text == text
}

const opRunChars = "=<>!+-*/%&|^~@:"

// scanStatements splits source text into top-level logical statements.
// Newlines inside brackets and after a backslash continue a statement; ';'
// separates statements on one line. Comments are skipped. It fails on
// unbalanced brackets, unterminated strings and indented statement starts.
func scanStatements(src string) ([][]token, bool) {
	var (
		stmts [][]token
		cur   []token
		depth int
	)
	flush := func() {
		if len(cur) > 0 {
			stmts = append(stmts, cur)
			cur = nil
		}
	}

	lineStart := true
	n := len(src)
	for i := 0; i < n; {
		if lineStart && depth == 0 {
			j := i
			for j < n && isBlank(src[j]) {
				j++
			}
			if j >= n {
				break
			}
			if src[j] == '\n' || src[j] == '\r' {
				i = j + 1
				continue
			}
			if src[j] == '#' {
				i = skipComment(src, j)
				continue
			}
			if j > i && len(cur) == 0 {
				return nil, false
			}
			lineStart = false
			i = j
			continue
		}

		c := src[i]
		switch {
		case c == '#':
			i = skipComment(src, i)

		case c == '\\':
			next, ok := skipContinuation(src, i)
			if !ok {
				return nil, false
			}
			i = next

		case c == '\n' || c == '\r':
			i++
			if depth == 0 {
				flush()
				lineStart = true
			}

		case isBlank(c):
			i++

		case c == ';' && depth == 0:
			flush()
			i++

		case c == '\'' || c == '"':
			end, ok := scanString(src, i)
			if !ok {
				return nil, false
			}
			cur = append(cur, token{kind: tokString, text: src[i:end]})
			i = end

		case isIdentStart(c):
			j := i + 1
			for j < n && isIdentPart(src[j]) {
				j++
			}
			word := src[i:j]
			if j < n && (src[j] == '\'' || src[j] == '"') && isStringPrefix(word) {
				end, ok := scanString(src, j)
				if !ok {
					return nil, false
				}
				cur = append(cur, token{kind: tokString, text: src[j:end], prefix: word})
				i = end
				continue
			}
			cur = append(cur, token{kind: tokName, text: word})
			i = j

		case c >= '0' && c <= '9':
			j := i + 1
			for j < n && (isIdentPart(src[j]) || src[j] == '.') {
				j++
			}
			cur = append(cur, token{kind: tokNumber, text: src[i:j]})
			i = j

		case strings.IndexByte(opRunChars, c) >= 0:
			j := i + 1
			for j < n && strings.IndexByte(opRunChars, src[j]) >= 0 {
				j++
			}
			cur = append(cur, token{kind: tokOp, text: src[i:j]})
			i = j

		default:
			switch c {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				depth--
				if depth < 0 {
					return nil, false
				}
			}
			cur = append(cur, token{kind: tokOp, text: string(c)})
			i++
		}
	}

	if depth != 0 {
		return nil, false
	}
	flush()
	return stmts, true
}

// scanString returns the index just past the string literal opening at i.
func scanString(src string, i int) (int, bool) {
	q := src[i]
	triple := strings.Repeat(string(q), 3)
	n := len(src)

	if strings.HasPrefix(src[i:], triple) {
		for j := i + 3; j < n; j++ {
			switch {
			case src[j] == '\\':
				j++
			case strings.HasPrefix(src[j:], triple):
				return j + 3, true
			}
		}
		return 0, false
	}

	for j := i + 1; j < n; j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n', '\r':
			return 0, false
		case q:
			return j + 1, true
		}
	}
	return 0, false
}

// skipComment returns the index of the line break ending the comment at i.
func skipComment(src string, i int) int {
	for i < len(src) && src[i] != '\n' && src[i] != '\r' {
		i++
	}
	return i
}

// skipContinuation consumes a backslash line continuation at i.
func skipContinuation(src string, i int) (int, bool) {
	switch {
	case strings.HasPrefix(src[i:], "\\\r\n"):
		return i + 3, true
	case strings.HasPrefix(src[i:], "\\\n"), strings.HasPrefix(src[i:], "\\\r"):
		return i + 2, true
	default:
		return 0, false
	}
}

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "u", "f", "b", "br", "rb", "fr", "rf":
		return true
	}
	return false
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
