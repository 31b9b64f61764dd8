// SPDX-License-Identifier: AGPL-3.0-or-later

/*
prin - print the textual contents of a source tree as one tagged stream.

It walks local directories and GitHub repositories depth-first, filters what
it finds, and renders every selected file for humans or language models.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bartekus/prin/cmd/prin/internal/clierr"
	"github.com/bartekus/prin/internal/config"
	"github.com/bartekus/prin/internal/filter"
	"github.com/bartekus/prin/internal/printer"
	"github.com/bartekus/prin/internal/render"
	"github.com/bartekus/prin/internal/runner"
	"github.com/bartekus/prin/internal/source/ghrepo"
)

type rootOptions struct {
	values     config.Config
	configPath string
	apiURL     string
	verbose    bool
}

// NewRootCmd constructs the prin root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("PRIN_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	opts := &rootOptions{values: config.Default()}
	cmd := &cobra.Command{
		Use:   "prin [paths|urls...]",
		Short: "Print the contents of source trees as one tagged stream",
		Long: `prin walks local paths and GitHub repositories depth-first and prints every
selected file, wrapped in a tag named after its path.

Arguments starting with https://github.com/, http://github.com/ or
git+https://github.com/ are read through the GitHub API; everything else is a
local path. Without arguments the working directory is printed.

Default match criteria:
  Without -e/--extension, common source and documentation extensions are
  matched. Extensionless files such as LICENSE and Dockerfile are added with
  --include-extensionless.

Note about exclusions:
  Exclusions match eagerly, each one as a substring:
  'o/b' matches 'foo/bar/baz'.
  Extension exclusions are stricter:
  '.py' matches 'foo.py' but not 'foo.pyc'.
  Use a glob for more control:
  '*o/b' matches 'foo/b' but not 'foo/bar/baz'.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, opts)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Config("invalid arguments", err)
	})

	v := &opts.values
	cmd.SetGlobalNormalizationFunc(flagAliases)
	f := cmd.Flags()
	f.BoolVarP(&v.IncludeTests, "include-tests", "T", false, "include test files and directories")
	f.BoolVarP(&v.IncludeLock, "include-lock", "K", false, "include dependency lock files")
	f.BoolVarP(&v.IncludeBinary, "include-binary", "a", false, "include binary and media files (aliases --text, --binary)")
	f.BoolVarP(&v.NoDocs, "no-docs", "d", false, "exclude documentation files (.md, .rst, .mdx)")
	f.BoolVarP(&v.IncludeEmpty, "include-empty", "M", false, "include empty and import-only files")
	f.BoolVarP(&v.OnlyHeaders, "only-headers", "l", false, "print file paths without contents")
	f.StringArrayVarP(&v.Extensions, "extension", "e", nil, "only include files with this extension or glob (repeatable)")
	f.StringArrayVarP(&v.Exclude, "exclude", "E", nil,
		"exclude paths matching this name, path fragment or glob (repeatable, alias --ignore); always excluded: "+
			filter.Describe(filter.DefaultExclusions()))
	f.BoolVar(&v.NoExclude, "no-exclude", false, "disable every exclusion, including the defaults")
	f.BoolVarP(&v.NoIgnore, "no-ignore", "I", false, "do not read .gitignore, .git/info/exclude or the global git ignore file")
	f.BoolVar(&v.IncludeExtensionless, "include-extensionless", false, "also include files without an extension, such as LICENSE")
	f.StringVar(&v.Tag, "tag", v.Tag, "output format: xml or md")
	f.IntVar(&v.MaxFiles, "max-files", 0, "stop after printing this many files (0 = unlimited)")
	f.StringVarP(&v.Output, "output", "o", "", "write output to this file instead of stdout")
	f.StringVar(&opts.configPath, "config", "", "defaults file (default ./"+config.DefaultFileName+" when present)")
	f.StringVar(&opts.apiURL, "api-url", os.Getenv("GITHUB_API_URL"), "GitHub API base URL (default https://api.github.com)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	return cmd
}

// flagAliases maps alternate long flag names onto their canonical flags.
func flagAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "text", "binary":
		name = "include-binary"
	case "ignore":
		name = "exclude"
	}
	return pflag.NormalizedName(name)
}

func runRoot(cmd *cobra.Command, args []string, opts *rootOptions) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

	wd, err := os.Getwd()
	if err != nil {
		return clierr.Failure("resolving working directory", err)
	}
	config.LoadEnv(wd)

	cfg, err := loadConfig(cmd, wd, opts)
	if err != nil {
		return clierr.Config("loading configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return clierr.Config("validating configuration", err)
	}
	formatter, err := render.ForTag(cfg.Tag)
	if err != nil {
		return clierr.Config("selecting formatter", err)
	}

	targets, err := runner.Plan(args)
	if err != nil {
		return clierr.Config("parsing arguments", err)
	}

	home, _ := os.UserHomeDir()
	var ghOpts []ghrepo.Option
	if opts.apiURL != "" {
		ghOpts = append(ghOpts, ghrepo.WithBaseURL(opts.apiURL))
	}

	p := printer.New(formatter, printer.Options{
		IncludeEmpty: cfg.IncludeEmpty,
		OnlyHeaders:  cfg.OnlyHeaders,
		Extensions:   cfg.ExtensionFilter(),
		MaxFiles:     cfg.MaxFiles,
		Logger:       logger,
	})
	r := runner.NewRunner(p, runner.Options{
		Filter: cfg.FilterOptions(home),
		Dir:    wd,
		Token:  config.Token(home),
		GitHub: ghOpts,
		Logger: logger,
	})
	jobs, err := r.Jobs(targets)
	if err != nil {
		return clierr.Config("preparing sources", err)
	}

	sink := render.Open(cfg.Output, cmd.OutOrStdout())
	runErr := r.RunAll(cmd.Context(), sink, jobs)
	if err := sink.Close(); err != nil {
		return clierr.Failure("writing output", err)
	}
	if runErr != nil {
		return clierr.Failure("printing", runErr)
	}
	logger.Debug("done", "files", p.Emitted())
	return nil
}

// loadConfig reads the defaults file and applies the flags given explicitly.
func loadConfig(cmd *cobra.Command, wd string, opts *rootOptions) (config.Config, error) {
	path, required := opts.configPath, true
	if path == "" {
		path, required = filepath.Join(wd, config.DefaultFileName), false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return cfg, err
	}

	v := opts.values
	f := cmd.Flags()
	overrides := []struct {
		flag  string
		apply func()
	}{
		{"include-tests", func() { cfg.IncludeTests = v.IncludeTests }},
		{"include-lock", func() { cfg.IncludeLock = v.IncludeLock }},
		{"include-binary", func() { cfg.IncludeBinary = v.IncludeBinary }},
		{"no-docs", func() { cfg.NoDocs = v.NoDocs }},
		{"include-empty", func() { cfg.IncludeEmpty = v.IncludeEmpty }},
		{"only-headers", func() { cfg.OnlyHeaders = v.OnlyHeaders }},
		{"extension", func() { cfg.Extensions = v.Extensions }},
		{"exclude", func() { cfg.Exclude = v.Exclude }},
		{"no-exclude", func() { cfg.NoExclude = v.NoExclude }},
		{"no-ignore", func() { cfg.NoIgnore = v.NoIgnore }},
		{"include-extensionless", func() { cfg.IncludeExtensionless = v.IncludeExtensionless }},
		{"tag", func() { cfg.Tag = v.Tag }},
		{"max-files", func() { cfg.MaxFiles = v.MaxFiles }},
		{"output", func() { cfg.Output = v.Output }},
	}
	for _, o := range overrides {
		if f.Changed(o.flag) {
			o.apply()
		}
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
