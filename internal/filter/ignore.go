// SPDX-License-Identifier: AGPL-3.0-or-later
package filter

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ReadIgnoreFile returns the non-blank, non-comment lines of a gitignore-like
// file. Missing or unreadable files yield no lines.
//
// Lines keep their raw form; negation, anchoring and "**" carry no special
// meaning beyond what Parse gives them.
func ReadIgnoreFile(path string) []string {
	f, err := os.Open(path) //nolint:gosec // path built from traversal roots
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if sc.Err() != nil {
		return nil
	}
	return lines
}

// IgnoreFileRules collects rules from the global git ignore file under home
// and, for every path that is a directory, its .gitignore and
// .git/info/exclude.
func IgnoreFileRules(paths []string, home string) []Rule {
	var lines []string
	if home != "" {
		lines = append(lines, ReadIgnoreFile(filepath.Join(home, ".config", "git", "ignore"))...)
	}
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil || !fi.IsDir() {
			continue
		}
		lines = append(lines, ReadIgnoreFile(filepath.Join(p, ".gitignore"))...)
		lines = append(lines, ReadIgnoreFile(filepath.Join(p, ".git", "info", "exclude"))...)
	}
	return ParseAll(lines)
}
