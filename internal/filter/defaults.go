// SPDX-License-Identifier: AGPL-3.0-or-later
package filter

// NoExtension is the extension-filter sentinel matching file names that
// contain no dot, such as LICENSE or Dockerfile.
const NoExtension = "."

// DefaultExclusions returns the build, VCS, cache, dotfile and secret rules
// applied unless exclusions are disabled.
func DefaultExclusions() []Rule {
	return []Rule{
		Suffix("egg-info"),
		Literal("build"),
		Literal("bin"),
		Literal("dist"),
		Literal("node_modules"),
		Prefix("."),
		Contains("cache"),
		// build artifacts and dependencies
		Literal("target"),
		Literal("vendor"),
		Literal("out"),
		Literal("coverage"),
		// editors
		Glob("*.swp"),
		Glob("*.swo"),
		// objects
		Glob("*.class"),
		Glob("*.o"),
		Glob("*.so"),
		Glob("*.dylib"),
		// logs and temporaries
		Literal("logs"),
		Glob("*.log"),
		Glob("*.tmp"),
		// secrets
		Literal("secrets"),
		Glob("*.key"),
		Glob("*.pem"),
	}
}

// DefaultTestExclusions returns rules for test directories and spec files.
func DefaultTestExclusions() []Rule {
	return []Rule{
		Literal("tests"),
		Literal("test"),
		Literal("spec.ts"),
		Glob("spec.ts*"),
		Literal("test.ts"),
		Glob("test.ts*"),
	}
}

// DefaultLockExclusions returns rules for dependency lock files.
func DefaultLockExclusions() []Rule {
	return []Rule{
		Literal("uv.lock"),
		Literal("poetry.lock"),
		Literal("Pipfile.lock"),
		Literal("package-lock.json"),
		Literal("yarn.lock"),
		Literal("pnpm-lock.yaml"),
		Literal("Gemfile.lock"),
		Literal("composer.lock"),
		Literal("Cargo.lock"),
		Literal("go.sum"),
		Literal("mix.lock"),
	}
}

// DefaultBinaryExclusions returns rules for compiled, archive, media and
// database files.
func DefaultBinaryExclusions() []Rule {
	patterns := []string{
		"*.pyc", "*.pyo", "*.pyd", "*.exe", "*.dll", "*.app", "*.deb", "*.rpm",
		"*.zip", "*.tar", "*.gz", "*.bz2", "*.xz", "*.7z", "*.rar", "*.jar", "*.war", "*.ear",
		"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.ico", "*.svg",
		"*.mp3", "*.mp4", "*.avi", "*.mov", "*.wav", "*.pdf",
		"*.db", "*.sqlite", "*.sqlite3", "*.dat", "*.bin",
	}
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, Glob(p))
	}
	return rules
}

// DefaultExtensions returns the source and configuration extensions matched
// when no explicit extension filter is given.
func DefaultExtensions() []string {
	return []string{
		".py",
		".go",
		".ts",
		".tsx",
		".js",
		".jsx",
		".json",
		"*.json*",
		".html",
		".css",
		".ini",
		".toml",
		".yaml",
		".yml",
		".sh",
		".zsh",
		".sql",
	}
}

// DefaultDocExtensions returns the documentation extensions added to the
// defaults unless documentation is suppressed.
func DefaultDocExtensions() []string {
	return []string{".md", ".rst", ".mdx"}
}
