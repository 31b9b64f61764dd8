// SPDX-License-Identifier: AGPL-3.0-or-later
package runner

import (
	"fmt"

	"github.com/bartekus/prin/internal/source/ghrepo"
)

// Target is one positional argument: a local path or a GitHub URL.
type Target struct {
	Arg string
	// Remote is set for GitHub URLs; Location is then the parsed URL.
	Remote   bool
	Location ghrepo.Location
}

// Root returns the path walked for the target: the argument itself for local
// targets, the in-repo path for remote ones.
func (t Target) Root() string {
	if t.Remote {
		return t.Location.Path
	}
	return t.Arg
}

// Plan classifies args in order. Without args the working directory is the
// only target. A malformed GitHub URL is an error.
func Plan(args []string) ([]Target, error) {
	if len(args) == 0 {
		return []Target{{Arg: "."}}, nil
	}
	targets := make([]Target, 0, len(args))
	for _, arg := range args {
		if !ghrepo.IsURL(arg) {
			targets = append(targets, Target{Arg: arg})
			continue
		}
		loc, err := ghrepo.ParseURL(arg)
		if err != nil {
			return nil, fmt.Errorf("planning %q: %w", arg, err)
		}
		targets = append(targets, Target{Arg: arg, Remote: true, Location: loc})
	}
	return targets, nil
}

// LocalPaths returns the arguments of the local targets.
func LocalPaths(targets []Target) []string {
	var paths []string
	for _, t := range targets {
		if !t.Remote {
			paths = append(paths, t.Arg)
		}
	}
	return paths
}
