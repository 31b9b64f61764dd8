// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ghrepo adapts a GitHub repository, read through the REST API, to
// source.Adapter.
package ghrepo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/go-github/v69/github"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/oauth2"

	"github.com/bartekus/prin/internal/content"
	"github.com/bartekus/prin/internal/source"
)

const defaultMemoSize = 1024

// Repo reads one repository at one ref. Metadata and file bytes are memoized
// for the lifetime of the Repo.
type Repo struct {
	loc    Location
	ref    string
	client *github.Client
	logger *slog.Logger

	meta  *lru.Cache[string, *github.RepositoryContent]
	blobs *lru.Cache[string, []byte]
}

type settings struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxWait    time.Duration
	sleep      sleepFunc
	now        func() time.Time
	logger     *slog.Logger
	memoSize   int
}

// Option configures a Repo.
type Option func(*settings)

// WithHTTPClient sends requests through c's transport.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithBaseURL points the client at a different API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(s *settings) { s.token = token }
}

// WithMaxWait sets the longest rate-limit wait that is slept through.
func WithMaxWait(d time.Duration) Option {
	return func(s *settings) { s.maxWait = d }
}

// WithSleep replaces the rate-limit sleep.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *settings) { s.sleep = fn }
}

// WithClock replaces the clock used to interpret X-RateLimit-Reset.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithMemoSize bounds the number of memoized paths.
func WithMemoSize(n int) Option {
	return func(s *settings) { s.memoSize = n }
}

// New returns an adapter for the repository named by rawURL.
func New(rawURL string, opts ...Option) (*Repo, error) {
	loc, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	s := settings{
		maxWait:  DefaultMaxWait,
		sleep:    sleepContext,
		now:      time.Now,
		logger:   slog.New(slog.DiscardHandler),
		memoSize: defaultMemoSize,
	}
	for _, opt := range opts {
		opt(&s)
	}

	base := http.DefaultTransport
	if s.httpClient != nil && s.httpClient.Transport != nil {
		base = s.httpClient.Transport
	}
	if s.token != "" {
		base = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.token}),
			Base:   base,
		}
	}
	client := github.NewClient(&http.Client{Transport: &retryTransport{
		base:    base,
		maxWait: s.maxWait,
		sleep:   s.sleep,
		now:     s.now,
		logger:  s.logger,
	}})
	if s.baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(s.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing base URL: %w", err)
		}
		client.BaseURL = u
	}

	meta, err := lru.New[string, *github.RepositoryContent](s.memoSize)
	if err != nil {
		return nil, fmt.Errorf("creating metadata cache: %w", err)
	}
	blobs, err := lru.New[string, []byte](s.memoSize)
	if err != nil {
		return nil, fmt.Errorf("creating content cache: %w", err)
	}

	return &Repo{
		loc:    loc,
		ref:    loc.Ref,
		client: client,
		logger: s.logger,
		meta:   meta,
		blobs:  blobs,
	}, nil
}

var _ source.Adapter = (*Repo)(nil)

// Location returns the parsed repository URL.
func (r *Repo) Location() Location { return r.loc }

// Name identifies the repository and, once known, the ref being read, so
// that two refs of one repository never share emitted paths.
func (r *Repo) Name() string {
	if r.ref == "" {
		return "github:" + r.loc.String()
	}
	return "github:" + r.loc.String() + "@" + r.ref
}

// ResolveRoot normalizes spec to an in-repo path ("" is the repository root).
// The default branch is looked up on first use unless the URL named a ref.
func (r *Repo) ResolveRoot(ctx context.Context, spec string) (string, error) {
	if err := r.ensureRef(ctx); err != nil {
		return "", err
	}
	return strings.TrimPrefix(path.Clean("/"+spec), "/"), nil
}

func (r *Repo) ensureRef(ctx context.Context) error {
	if r.ref != "" {
		return nil
	}
	repo, _, err := r.client.Repositories.Get(bypass(ctx), r.loc.Owner, r.loc.Repo)
	if err != nil {
		return fmt.Errorf("fetching repository %s: %w", r.loc, err)
	}
	r.ref = repo.GetDefaultBranch()
	r.logger.Debug("resolved default branch", "repo", r.loc.String(), "ref", r.ref)
	return nil
}

func (r *Repo) ListDir(ctx context.Context, dir string) ([]source.Entry, error) {
	if err := r.ensureRef(ctx); err != nil {
		return nil, err
	}
	file, items, err := r.contents(ctx, dir)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", dir, source.ErrNotFound)
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	if file != nil {
		r.meta.Add(dir, file)
		if file.GetType() == "file" {
			return nil, fmt.Errorf("%s: %w", dir, source.ErrNotADirectory)
		}
		// symlinks and submodules resolve to a single object
		return nil, fmt.Errorf("%s (%s): %w", dir, file.GetType(), source.ErrNotFound)
	}

	out := make([]source.Entry, 0, len(items))
	for _, it := range items {
		p := it.GetPath()
		if p == "" {
			p = path.Join(dir, it.GetName())
		}
		e := source.NewEntry(p, kindOf(it.GetType()))
		if name := it.GetName(); name != "" {
			e.Name = name
		}
		out = append(out, e)
	}
	return out, nil
}

// ReadFile returns the file's bytes from the inline payload, the download URL
// or the git blob, in that order. A missing file reads as empty.
func (r *Repo) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if data, ok := r.blobs.Get(p); ok {
		return data, nil
	}
	data, err := r.fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	r.blobs.Add(p, data)
	return data, nil
}

func (r *Repo) IsEmpty(ctx context.Context, p string) (bool, error) {
	data, err := r.ReadFile(ctx, p)
	if err != nil {
		return false, err
	}
	return content.IsSemanticallyEmpty(data), nil
}

func (r *Repo) fetch(ctx context.Context, p string) ([]byte, error) {
	info, err := r.metadata(ctx, p)
	if err != nil || info == nil {
		return nil, err
	}

	var inline string
	if info.Content != nil {
		inline = *info.Content
	}
	if info.GetEncoding() == "base64" && (inline != "" || info.GetSize() == 0) {
		if data, err := base64.StdEncoding.DecodeString(inline); err == nil {
			return data, nil
		}
	}

	if dl := info.GetDownloadURL(); dl != "" {
		return r.download(ctx, dl)
	}

	if sha := info.GetSHA(); sha != "" {
		blob, _, err := r.client.Git.GetBlob(bypass(ctx), r.loc.Owner, r.loc.Repo, sha)
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("fetching blob %s for %s: %w", sha, p, err)
		}
		if blob.GetEncoding() == "base64" && blob.GetContent() != "" {
			data, err := base64.StdEncoding.DecodeString(blob.GetContent())
			if err != nil {
				return nil, fmt.Errorf("decoding blob %s for %s: %w", sha, p, err)
			}
			return data, nil
		}
	}
	return nil, nil
}

// metadata returns the contents-API object for p, or nil when p does not
// exist or is a directory.
func (r *Repo) metadata(ctx context.Context, p string) (*github.RepositoryContent, error) {
	if info, ok := r.meta.Get(p); ok {
		return info, nil
	}
	if err := r.ensureRef(ctx); err != nil {
		return nil, err
	}
	file, _, err := r.contents(ctx, p)
	if err != nil {
		if isNotFound(err) || errors.Is(err, source.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching %s: %w", p, err)
	}
	if file != nil {
		r.meta.Add(p, file)
	}
	return file, nil
}

// contents calls the contents API for p. The response is either a single
// object (file, symlink, submodule) or an array (directory listing). Names
// that merely contain ".." are legal; only a ".." segment is refused.
func (r *Repo) contents(ctx context.Context, p string) (*github.RepositoryContent, []*github.RepositoryContent, error) {
	p = strings.Trim(p, "/")
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return nil, nil, fmt.Errorf("%s: parent segment: %w", p, source.ErrNotFound)
		}
	}

	u := fmt.Sprintf("repos/%s/%s/contents/%s", r.loc.Owner, r.loc.Repo, (&url.URL{Path: p}).String())
	if r.ref != "" {
		u += "?" + url.Values{"ref": {r.ref}}.Encode()
	}
	req, err := r.client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("building contents request: %w", err)
	}
	var raw json.RawMessage
	if _, err := r.client.Do(bypass(ctx), req, &raw); err != nil {
		return nil, nil, err
	}

	var file github.RepositoryContent
	fileErr := json.Unmarshal(raw, &file)
	if fileErr == nil {
		return &file, nil, nil
	}
	var items []*github.RepositoryContent
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, fmt.Errorf("decoding contents of %q: %w", p, errors.Join(fileErr, err))
	}
	return nil, items, nil
}

func (r *Repo) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := r.client.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}
	var buf bytes.Buffer
	if _, err := r.client.Do(bypass(ctx), req, io.Writer(&buf)); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	return buf.Bytes(), nil
}

// bypass disables the client's own pre-request rate-limit check; waits are
// handled by retryTransport.
func bypass(ctx context.Context) context.Context {
	return context.WithValue(ctx, github.BypassRateLimitCheck, true)
}

func isNotFound(err error) bool {
	var er *github.ErrorResponse
	return errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusNotFound
}

func kindOf(t string) source.Kind {
	switch t {
	case "dir":
		return source.Directory
	case "file":
		return source.File
	default:
		return source.Other
	}
}
