// SPDX-License-Identifier: AGPL-3.0-or-later
package ghrepo

import (
	"errors"
	"fmt"
	"strings"
)

var urlPrefixes = []string{
	"https://github.com/",
	"http://github.com/",
	"git+https://github.com/",
}

// ErrInvalidURL is returned by ParseURL for URLs that do not name a repository.
var ErrInvalidURL = errors.New("invalid GitHub URL")

// Location identifies a repository and an optional ref and sub-path within it.
type Location struct {
	Owner string
	Repo  string
	// Ref is empty when the URL does not name one; the default branch is
	// used instead.
	Ref  string
	Path string
}

func (l Location) String() string {
	return l.Owner + "/" + l.Repo
}

// IsURL reports whether arg looks like a GitHub repository URL.
func IsURL(arg string) bool {
	tok := strings.ToLower(strings.TrimSpace(arg))
	if strings.HasPrefix(tok, "-") {
		return false
	}
	for _, p := range urlPrefixes {
		if strings.HasPrefix(tok, p) {
			return true
		}
	}
	return false
}

// ParseURL extracts the owner, repository, ref and in-repo path from a GitHub
// URL. A ".git" suffix on the repository is dropped. "tree/<ref>/..." and
// "blob/<ref>/..." name a ref, as does a leading "main" or "master" segment.
func ParseURL(raw string) (Location, error) {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)

	rest, ok := "", false
	for _, p := range urlPrefixes {
		if strings.HasPrefix(lower, p) {
			rest, ok = s[len(p):], true
			break
		}
	}
	if !ok {
		return Location{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}

	var segs []string
	for _, seg := range strings.Split(rest, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	if len(segs) < 2 {
		return Location{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}

	loc := Location{Owner: segs[0], Repo: strings.TrimSuffix(segs[1], ".git")}
	if loc.Repo == "" {
		return Location{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}

	tail := segs[2:]
	switch {
	case len(tail) >= 2 && (tail[0] == "tree" || tail[0] == "blob"):
		loc.Ref, tail = tail[1], tail[2:]
	case len(tail) >= 1 && (tail[0] == "main" || tail[0] == "master"):
		loc.Ref, tail = tail[0], tail[1:]
	}
	loc.Path = strings.Join(tail, "/")
	return loc, nil
}
