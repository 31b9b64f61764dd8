// SPDX-License-Identifier: AGPL-3.0-or-later

// Package runner turns positional arguments into printer jobs and runs them
// against one shared printer.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/bartekus/prin/internal/filter"
	"github.com/bartekus/prin/internal/printer"
	"github.com/bartekus/prin/internal/source/ghrepo"
	"github.com/bartekus/prin/internal/source/localfs"
)

// Options configure how jobs are built.
type Options struct {
	// Filter is the exclusion configuration. Paths is filled in from the
	// local targets; remote jobs never read ignore files.
	Filter filter.Options
	// Dir is the working directory local paths resolve against.
	Dir string
	// Token authenticates GitHub requests when set.
	Token string
	// GitHub holds extra options for every remote adapter.
	GitHub []ghrepo.Option
	Logger *slog.Logger
}

// Runner executes jobs in order.
type Runner struct {
	printer *printer.Printer
	opts    Options
	logger  *slog.Logger
}

// NewRunner creates a runner that emits through p.
func NewRunner(p *printer.Printer, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{printer: p, opts: opts, logger: logger}
}

// Jobs builds one job per target, preserving order. Local targets share one
// filesystem adapter; each URL gets its own repository adapter.
func (r *Runner) Jobs(targets []Target) ([]printer.Job, error) {
	local := localfs.New(r.opts.Dir)

	localOpts := r.opts.Filter
	localOpts.Paths = nil
	for _, p := range LocalPaths(targets) {
		if !filepath.IsAbs(p) {
			p = filepath.Join(r.opts.Dir, p)
		}
		localOpts.Paths = append(localOpts.Paths, p)
	}
	localRules := filter.ResolveExclusions(localOpts)

	remoteOpts := r.opts.Filter
	remoteOpts.Paths = nil
	remoteOpts.NoIgnore = true
	remoteRules := filter.ResolveExclusions(remoteOpts)

	jobs := make([]printer.Job, 0, len(targets))
	for _, t := range targets {
		if !t.Remote {
			jobs = append(jobs, printer.Job{Source: local, Roots: []string{t.Root()}, Exclusions: localRules})
			continue
		}
		opts := []ghrepo.Option{ghrepo.WithLogger(r.logger)}
		if r.opts.Token != "" {
			opts = append(opts, ghrepo.WithToken(r.opts.Token))
		}
		repo, err := ghrepo.New(t.Arg, append(opts, r.opts.GitHub...)...)
		if err != nil {
			return nil, fmt.Errorf("creating adapter for %s: %w", t.Arg, err)
		}
		jobs = append(jobs, printer.Job{Source: repo, Roots: []string{t.Root()}, Exclusions: remoteRules})
	}
	return jobs, nil
}

// RunAll executes jobs in order, writing to w. It continues past aborted
// roots, accumulating them, and stops early once the printer's budget is
// spent. Returns an error if ANY root failed; a write failure is returned
// as is.
func (r *Runner) RunAll(ctx context.Context, w io.Writer, jobs []printer.Job) error {
	var failed []string
	for _, job := range jobs {
		if r.printer.Exhausted() {
			r.logger.Debug("file budget spent, stopping", "emitted", r.printer.Emitted())
			break
		}

		err := r.printer.Run(ctx, w, job)
		if err == nil {
			continue
		}
		for _, e := range flatten(err) {
			var rootErr *printer.RootError
			if !errors.As(e, &rootErr) {
				return e
			}
			r.logger.Error("root aborted", "source", rootErr.Source, "root", rootErr.Root, "err", rootErr.Err)
			failed = append(failed, rootErr.Source+":"+rootErr.Root)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("run failed: %v", failed)
	}
	return nil
}

func flatten(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
