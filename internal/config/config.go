// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads persistent defaults for prin from a YAML file and the
// environment.
package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bartekus/prin/internal/filter"
	"github.com/bartekus/prin/internal/render"
)

// DefaultFileName is looked up in the working directory when no config file
// is named explicitly.
const DefaultFileName = ".prin.yaml"

// TokenFileName holds a GitHub token in the user's home directory.
const TokenFileName = ".github-token"

// ErrInvalid wraps every configuration error.
var ErrInvalid = errors.New("invalid configuration")

// Config mirrors the command-line flags. Flags given explicitly override
// values read from a file.
type Config struct {
	Tag                  string   `yaml:"tag"`
	IncludeTests         bool     `yaml:"include_tests"`
	IncludeLock          bool     `yaml:"include_lock"`
	IncludeBinary        bool     `yaml:"include_binary"`
	NoDocs               bool     `yaml:"no_docs"`
	IncludeEmpty         bool     `yaml:"include_empty"`
	OnlyHeaders          bool     `yaml:"only_headers"`
	Extensions           []string `yaml:"extensions"`
	Exclude              []string `yaml:"exclude"`
	NoExclude            bool     `yaml:"no_exclude"`
	NoIgnore             bool     `yaml:"no_ignore"`
	IncludeExtensionless bool     `yaml:"include_extensionless"`
	MaxFiles             int      `yaml:"max_files"`
	Output               string   `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{Tag: render.TagXML}
}

// Load reads the YAML file at path over Default. A missing file is an error
// only when required is set. Unknown keys are rejected.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // user-selected config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%w: reading %s: %w", ErrInvalid, path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: parsing %s: %w", ErrInvalid, path, err)
	}
	return cfg, nil
}

// Validate rejects unknown output tags and negative file budgets.
func (c Config) Validate() error {
	if !slices.Contains(render.Tags(), c.Tag) {
		return fmt.Errorf("%w: unknown tag %q (supported: %s)", ErrInvalid, c.Tag, strings.Join(render.Tags(), ", "))
	}
	if c.MaxFiles < 0 {
		return fmt.Errorf("%w: max files must not be negative, got %d", ErrInvalid, c.MaxFiles)
	}
	return nil
}

// FilterOptions returns the exclusion settings. Ignore-file paths are filled
// in by the caller.
func (c Config) FilterOptions(home string) filter.Options {
	return filter.Options{
		NoExclude:     c.NoExclude,
		Custom:        c.Exclude,
		IncludeTests:  c.IncludeTests,
		IncludeLock:   c.IncludeLock,
		IncludeBinary: c.IncludeBinary,
		NoIgnore:      c.NoIgnore,
		Home:          home,
	}
}

// ExtensionFilter returns the effective extension filter.
func (c Config) ExtensionFilter() []string {
	return filter.ResolveExtensions(c.Extensions, c.NoDocs, c.IncludeExtensionless)
}

// LoadEnv loads dir/.env into the process environment without overriding
// variables that are already set. A missing file is ignored.
func LoadEnv(dir string) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))
}

// Token returns the GitHub token from GITHUB_TOKEN, falling back to the first
// line of home/.github-token. It returns "" when neither is set.
func Token(home string) string {
	if tok := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); tok != "" {
		return tok
	}
	if home == "" {
		return ""
	}
	f, err := os.Open(filepath.Join(home, TokenFileName))
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text())
	}
	return ""
}
