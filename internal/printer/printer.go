// SPDX-License-Identifier: AGPL-3.0-or-later

// Package printer walks sources depth-first and writes one record per
// selected file.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/bartekus/prin/internal/content"
	"github.com/bartekus/prin/internal/filter"
	"github.com/bartekus/prin/internal/render"
	"github.com/bartekus/prin/internal/source"
)

// Options control which files are emitted and how.
type Options struct {
	// IncludeEmpty keeps files whose content is semantically empty.
	IncludeEmpty bool
	// OnlyHeaders emits path records without file bodies.
	OnlyHeaders bool
	// Extensions restricts traversed files; empty matches everything.
	Extensions []string
	// MaxFiles caps the files emitted by the Printer across every Run.
	// Zero means unlimited.
	MaxFiles int
	Logger   *slog.Logger
}

// Job is one source and the roots to walk in it.
type Job struct {
	Source     source.Adapter
	Roots      []string
	Exclusions []filter.Rule
}

// RootError reports a root whose traversal was aborted.
type RootError struct {
	Source string
	Root   string
	Err    error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("%s: root %q: %v", e.Source, e.Root, e.Err)
}

func (e *RootError) Unwrap() error { return e.Err }

// writeError marks sink failures, which end the run.
type writeError struct{ err error }

func (e *writeError) Error() string { return "writing output: " + e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

// Printer owns the output budget and the set of emitted paths for a run. It
// is not safe for concurrent use.
type Printer struct {
	formatter render.Formatter
	opts      Options
	logger    *slog.Logger

	printed map[string]struct{}
	emitted int
}

func New(formatter render.Formatter, opts Options) *Printer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Printer{
		formatter: formatter,
		opts:      opts,
		logger:    logger,
		printed:   make(map[string]struct{}),
	}
}

// Emitted returns the number of records written so far.
func (p *Printer) Emitted() int { return p.emitted }

// Exhausted reports whether the file budget has been used up.
func (p *Printer) Exhausted() bool {
	return p.opts.MaxFiles > 0 && p.emitted >= p.opts.MaxFiles
}

// Run walks each root of job in order, writing records to w. A root that
// fails is reported as a *RootError and the remaining roots still run; the
// failures are joined into the returned error. A write failure stops the run
// immediately. Without roots, "." is walked.
func (p *Printer) Run(ctx context.Context, w io.Writer, job Job) error {
	roots := job.Roots
	if len(roots) == 0 {
		roots = []string{"."}
	}

	var errs []error
	for _, spec := range roots {
		if p.Exhausted() {
			break
		}
		err := p.walk(ctx, w, job, spec)
		if err == nil {
			continue
		}
		var we *writeError
		if errors.As(err, &we) || ctx.Err() != nil {
			return errors.Join(append(errs, err)...)
		}
		errs = append(errs, &RootError{Source: job.Source.Name(), Root: spec, Err: err})
	}
	return errors.Join(errs...)
}

func (p *Printer) walk(ctx context.Context, w io.Writer, job Job, spec string) error {
	src := job.Source
	root, err := src.ResolveRoot(ctx, spec)
	if err != nil {
		return err
	}

	stack := []string{root}
	for len(stack) > 0 {
		if p.Exhausted() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := src.ListDir(ctx, current)
		switch {
		case errors.Is(err, source.ErrNotADirectory):
			if err := p.emit(ctx, w, job, root, source.NewEntry(current, source.File), true); err != nil {
				return err
			}
			continue
		case errors.Is(err, source.ErrNotFound):
			p.logger.Debug("skipping missing path", "source", src.Name(), "path", current)
			continue
		case errors.Is(err, fs.ErrPermission):
			p.logger.Warn("skipping unreadable directory", "source", src.Name(), "path", current, "err", err)
			continue
		case err != nil:
			return err
		}

		dirs, files := partition(entries)
		for i := len(dirs) - 1; i >= 0; i-- {
			if !filter.IsExcluded(relPath(root, dirs[i].Path), job.Exclusions) {
				stack = append(stack, dirs[i].Path)
			}
		}
		for _, f := range files {
			if p.Exhausted() {
				return nil
			}
			if err := p.emit(ctx, w, job, root, f, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// emit writes the record for e unless it was already emitted or, for files
// found by traversal, a filter rejects it. Explicitly named files bypass the
// filters.
func (p *Printer) emit(ctx context.Context, w io.Writer, job Job, root string, e source.Entry, forced bool) error {
	key := job.Source.Name() + "\x00" + e.Path
	if _, done := p.printed[key]; done {
		return nil
	}

	display := relPath(root, e.Path)
	if !forced {
		if filter.IsExcluded(display, job.Exclusions) {
			return nil
		}
		if !filter.MatchExtension(e.Name, p.opts.Extensions) {
			return nil
		}
		if !p.opts.IncludeEmpty {
			empty, err := job.Source.IsEmpty(ctx, e.Path)
			if err != nil {
				return err
			}
			if empty {
				return nil
			}
		}
	}

	var record string
	if p.opts.OnlyHeaders {
		record = p.formatter.Header(display)
	} else {
		blob, err := job.Source.ReadFile(ctx, e.Path)
		if err != nil {
			return err
		}
		if content.IsText(blob) {
			record = p.formatter.Body(display, content.Decode(blob))
		} else {
			record = p.formatter.Binary(display)
		}
	}

	if _, err := io.WriteString(w, record); err != nil {
		return &writeError{err: err}
	}
	p.printed[key] = struct{}{}
	p.emitted++
	return nil
}

// partition splits entries into directories and files, each sorted by
// case-folded name. Other entries are dropped.
func partition(entries []source.Entry) (dirs, files []source.Entry) {
	for _, e := range entries {
		switch e.Kind {
		case source.Directory:
			dirs = append(dirs, e)
		case source.File:
			files = append(files, e)
		}
	}
	byName := func(s []source.Entry) func(i, j int) bool {
		return func(i, j int) bool { return strings.ToLower(s[i].Name) < strings.ToLower(s[j].Name) }
	}
	sort.SliceStable(dirs, byName(dirs))
	sort.SliceStable(files, byName(files))
	return dirs, files
}

// relPath returns p relative to root. The root itself is shown by its base
// name and paths outside root are returned unchanged.
func relPath(root, p string) string {
	switch {
	case p == root:
		return path.Base(p)
	case root == "":
		return p
	case root == "/":
		return strings.TrimPrefix(p, "/")
	case strings.HasPrefix(p, root+"/"):
		return p[len(root)+1:]
	default:
		return p
	}
}
