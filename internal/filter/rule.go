// SPDX-License-Identifier: AGPL-3.0-or-later
package filter

import (
	"fmt"
	"strings"

	"github.com/bartekus/prin/internal/match"
)

// RuleKind selects how a Rule's pattern is interpreted.
type RuleKind int

const (
	// LiteralRule matches by equality, extension suffix or substring.
	LiteralRule RuleKind = iota
	// GlobRule matches with shell-style globbing.
	GlobRule
	// PredicateRule applies a named string test.
	PredicateRule
)

// Predicate names the test applied by a PredicateRule.
type Predicate int

const (
	HasPrefix Predicate = iota + 1
	HasSuffix
	// ContainsFold is a case-insensitive substring test.
	ContainsFold
)

// Rule is one exclusion rule. The zero value is a literal rule with an empty
// pattern, which matches everything.
type Rule struct {
	Kind    RuleKind
	Pattern string
	Pred    Predicate
}

// Literal returns a literal (substring-style) rule.
func Literal(s string) Rule { return Rule{Kind: LiteralRule, Pattern: s} }

// Glob returns a shell-glob rule.
func Glob(s string) Rule { return Rule{Kind: GlobRule, Pattern: s} }

// Prefix excludes names or paths starting with s.
func Prefix(s string) Rule { return Rule{Kind: PredicateRule, Pattern: s, Pred: HasPrefix} }

// Suffix excludes names or paths ending with s.
func Suffix(s string) Rule { return Rule{Kind: PredicateRule, Pattern: s, Pred: HasSuffix} }

// Contains excludes names or paths containing s, ignoring case.
func Contains(s string) Rule { return Rule{Kind: PredicateRule, Pattern: s, Pred: ContainsFold} }

// Parse turns a user or ignore-file string into a rule: glob when it contains
// glob metacharacters, literal otherwise.
func Parse(s string) Rule {
	if match.IsGlob(s) {
		return Glob(s)
	}
	return Literal(s)
}

// ParseAll parses every string in ss.
func ParseAll(ss []string) []Rule {
	rules := make([]Rule, 0, len(ss))
	for _, s := range ss {
		rules = append(rules, Parse(s))
	}
	return rules
}

// String describes the rule for help text.
func (r Rule) String() string {
	if r.Kind != PredicateRule {
		return r.Pattern
	}
	switch r.Pred {
	case HasPrefix:
		return fmt.Sprintf("paths starting with %q", r.Pattern)
	case HasSuffix:
		return fmt.Sprintf("paths ending with %q", r.Pattern)
	case ContainsFold:
		return fmt.Sprintf("paths containing %q", r.Pattern)
	default:
		return fmt.Sprintf("unknown predicate on %q", r.Pattern)
	}
}

func (r Rule) test(s string) bool {
	switch r.Pred {
	case HasPrefix:
		return strings.HasPrefix(s, r.Pattern)
	case HasSuffix:
		return strings.HasSuffix(s, r.Pattern)
	case ContainsFold:
		return strings.Contains(strings.ToLower(s), strings.ToLower(r.Pattern))
	default:
		return false
	}
}

// matches applies the rule to an entry's path, base name and stem.
func (r Rule) matches(p, name, stem string, entryIsGlob bool) bool {
	candidates := [...]string{name, p, stem}

	switch {
	case r.Kind == PredicateRule:
		return r.test(name) || r.test(stem) || r.test(p)

	case r.Kind == GlobRule || entryIsGlob || match.IsGlob(r.Pattern):
		for _, c := range candidates {
			if match.Glob(c, r.Pattern) {
				return true
			}
		}
		return false
	}

	lit := r.Pattern
	isExt := match.IsExtension(lit)
	if name == lit || p == lit || stem == lit || (isExt && strings.HasSuffix(name, lit)) {
		return true
	}

	// Literals fall back to "*lit*" (or "*lit" for extensions).
	for _, c := range candidates {
		if isExt {
			if strings.HasSuffix(c, lit) {
				return true
			}
		} else if strings.Contains(c, lit) {
			return true
		}
	}
	return false
}
