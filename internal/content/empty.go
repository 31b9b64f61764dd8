// SPDX-License-Identifier: AGPL-3.0-or-later
package content

import (
	"strings"
)

// IsSemanticallyEmpty reports whether blob carries no meaningful content:
// blank text, or text whose top-level statements are all imports, a single
// `__all__ = ...` assignment, or bare string literals (docstrings).
//
// Binary content is never empty. Text that does not scan cleanly is treated
// as non-empty. Comments are not understood, so a file holding only comments
// or a shebang is non-empty.
func IsSemanticallyEmpty(blob []byte) bool {
	if !IsText(blob) {
		return false
	}
	return IsTextSemanticallyEmpty(Decode(blob))
}

// IsTextSemanticallyEmpty is IsSemanticallyEmpty over decoded text.
func IsTextSemanticallyEmpty(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	stmts, ok := scanStatements(text)
	if !ok || len(stmts) == 0 {
		// a file of nothing but comments or a shebang is kept
		return false
	}
	for _, stmt := range stmts {
		if !isBoilerplate(stmt) {
			return false
		}
	}
	return true
}

func isBoilerplate(stmt []token) bool {
	switch {
	case stmt[0].is(tokName, "import"):
		return isImport(stmt[1:], ".", ",")
	case stmt[0].is(tokName, "from"):
		return isFromImport(stmt[1:])
	case stmt[0].is(tokName, "__all__"):
		return isExportList(stmt[1:])
	default:
		return isDocstring(stmt)
	}
}

// isImport accepts dotted names, aliases and the listed punctuation.
func isImport(rest []token, allowedOps ...string) bool {
	if len(rest) == 0 {
		return false
	}
	for _, t := range rest {
		if t.kind == tokName {
			continue
		}
		if t.kind != tokOp || !contains(allowedOps, t.text) {
			return false
		}
	}
	return true
}

func isFromImport(rest []token) bool {
	for i, t := range rest {
		if t.is(tokName, "import") {
			return i > 0 &&
				isImport(rest[:i], ".") &&
				isImport(rest[i+1:], ".", ",", "(", ")", "*")
		}
	}
	return false
}

// isExportList accepts "= <expr>" where expr holds no further top-level
// assignment (a chained assignment has more than one target).
func isExportList(rest []token) bool {
	if len(rest) < 2 || !rest[0].is(tokOp, "=") {
		return false
	}
	depth := 0
	for _, t := range rest[1:] {
		if t.kind != tokOp {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case "=":
			if depth == 0 {
				return false
			}
		}
	}
	return true
}

// isDocstring accepts one or more adjacent plain string literals.
func isDocstring(stmt []token) bool {
	for _, t := range stmt {
		if t.kind != tokString {
			return false
		}
		switch strings.ToLower(t.prefix) {
		case "", "r", "u":
		default:
			return false
		}
	}
	return true
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
