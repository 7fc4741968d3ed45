// SPDX-License-Identifier: MPL-2.0

package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/stratalaunch/strata/internal/classpath"
	"github.com/stratalaunch/strata/pkg/artifact"
	"github.com/stratalaunch/strata/pkg/manifest"
)

const (
	// DefaultConcurrency bounds parallel fetches when Options.Concurrency is unset.
	DefaultConcurrency = 4
	// DefaultTimeout bounds one fetch attempt when Options.Timeout is unset.
	DefaultTimeout = 60 * time.Second
	// DefaultMaxAttempts is the per-source attempt limit when Options.MaxAttempts is unset.
	DefaultMaxAttempts = 3
	// DefaultBaseBackoff is the first retry delay when Options.BaseBackoff is unset.
	DefaultBaseBackoff = 500 * time.Millisecond
)

type (
	// Options configures an Acquirer. Zero fields take the Default* values.
	Options struct {
		Concurrency int
		Timeout     time.Duration
		MaxAttempts int
		BaseBackoff time.Duration
		Logger      *log.Logger
		// HTTPClient is used for explicit http(s) sources.
		HTTPClient *http.Client
		// Sleep replaces the context-aware backoff wait, for tests.
		Sleep func(context.Context, time.Duration) error
	}

	// Acquirer resolves manifests against a cache and an ordered list of
	// repositories.
	Acquirer struct {
		cache        *Cache
		repositories []Source
		opts         Options
	}

	// Result is the outcome of one acquisition.
	Result struct {
		// Classpath holds one entry per bucket artifact, tagged by the
		// bucket's layer, in manifest order.
		Classpath classpath.Resolved
		// Hits and Fetched count distinct coordinates.
		Hits    int
		Fetched int
	}
)

// New returns an Acquirer writing into cache and falling back to repositories,
// in order, for coordinates without an explicit source.
func New(cache *Cache, repositories []Source, opts Options) *Acquirer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = DefaultBaseBackoff
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Acquirer{cache: cache, repositories: repositories, opts: opts}
}

// Acquire materializes every artifact of m. Distinct coordinates are acquired
// in parallel; the first failure cancels the rest and is returned.
func (a *Acquirer) Acquire(ctx context.Context, m *manifest.Manifest) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	coords := m.Coordinates()
	paths := make(map[artifact.Identity]string, len(coords))
	var (
		mu     sync.Mutex
		result Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)
	for _, c := range coords {
		g.Go(func() error {
			path, hit, err := a.acquireOne(gctx, c)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			paths[c.Identity()] = path
			if hit {
				result.Hits++
			} else {
				result.Fetched++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, b := range m.Buckets {
		for _, c := range b.Artifacts {
			entry := c
			result.Classpath = append(result.Classpath, classpath.Entry{
				Layer:    b.Layer,
				Path:     paths[c.Identity()],
				Origin:   classpath.OriginAcquired,
				Artifact: &entry,
			})
		}
	}

	a.opts.Logger.Debug("acquisition complete", "manifest", m.Name, "hits", result.Hits, "fetched", result.Fetched)
	return &result, nil
}

// acquireOne returns the verified cache location of c and whether it was a
// cache hit.
func (a *Acquirer) acquireOne(ctx context.Context, c artifact.Coordinate) (string, bool, error) {
	unlock, err := a.cache.Lock(c)
	if err != nil {
		return "", false, &CacheError{Coordinate: c, Err: err}
	}
	defer unlock()

	path, hit, err := a.cache.Lookup(c)
	if err != nil {
		if errors.Is(err, ErrHashMismatch) {
			return "", false, err
		}
		return "", false, &CacheError{Coordinate: c, Err: err}
	}
	if hit {
		a.opts.Logger.Debug("cache hit", "artifact", c)
		return path, true, nil
	}
	a.opts.Logger.Debug("cache miss", "artifact", c)

	var (
		tried       []string
		unavailable *FetchUnavailableError
	)
	for _, src := range a.sourcesFor(c) {
		path, err := a.fetchFrom(ctx, src, c)
		if err == nil {
			a.opts.Logger.Debug("fetched", "artifact", c, "source", src.Name())
			return path, false, nil
		}

		var fue *FetchUnavailableError
		switch {
		case ctx.Err() != nil:
			return "", false, ctx.Err()
		case errors.Is(err, ErrHashMismatch), errors.Is(err, ErrCache):
			return "", false, err
		case errors.As(err, &fue):
			a.opts.Logger.Debug("source unavailable", "artifact", c, "source", src.Name(), "error", err)
			if unavailable == nil {
				unavailable = fue
			}
		case errors.Is(err, ErrNotFound):
			tried = append(tried, src.Name()+": not found")
		default:
			tried = append(tried, fmt.Sprintf("%s: %v", src.Name(), err))
		}
	}

	// A source that was down may have held the coordinate.
	if unavailable != nil {
		return "", false, unavailable
	}
	return "", false, &MissingSourceError{Coordinate: c, Tried: tried}
}

// sourcesFor returns the explicit source of c alone, or every repository.
func (a *Acquirer) sourcesFor(c artifact.Coordinate) []Source {
	if c.Source != "" {
		return []Source{&uriSource{uri: c.Source, client: a.opts.HTTPClient}}
	}
	return a.repositories
}

// fetchFrom downloads c from src into the cache, retrying transient failures.
func (a *Acquirer) fetchFrom(ctx context.Context, src Source, c artifact.Coordinate) (string, error) {
	var (
		path     string
		attempts int
	)
	err := retryWithBackoff(ctx, a.opts.MaxAttempts, a.opts.BaseBackoff, a.opts.Sleep, func(attempt int) (bool, error) {
		attempts = attempt + 1
		if attempt > 0 {
			a.opts.Logger.Debug("retrying fetch", "artifact", c, "source", src.Name(), "attempt", attempts)
		}

		p, err := a.fetchAttempt(ctx, src, c)
		if err != nil {
			return IsTransient(err) && ctx.Err() == nil, err
		}
		path = p
		return false, nil
	})
	if err != nil {
		if IsTransient(err) {
			return "", &FetchUnavailableError{Coordinate: c, Source: src.Name(), Attempts: attempts, Err: err}
		}
		return "", err
	}
	return path, nil
}

// fetchAttempt runs one bounded download.
func (a *Acquirer) fetchAttempt(ctx context.Context, src Source, c artifact.Coordinate) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	rc, err := src.Open(ctx, c)
	if err != nil {
		if ctx.Err() != nil && !IsTransient(err) {
			return "", &TransientError{Err: err}
		}
		return "", err
	}
	defer func() { _ = rc.Close() }() // read-only body

	body := &trackingReader{r: rc}
	path, err := a.cache.Store(c, body, src.Name())
	switch {
	case err == nil:
		return path, nil
	case body.err != nil:
		return "", &TransientError{Err: body.err}
	case errors.Is(err, ErrHashMismatch):
		return "", err
	default:
		return "", &CacheError{Coordinate: c, Err: err}
	}
}

// trackingReader remembers the first read error so that failures of the
// source can be told apart from failures of the cache.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}
