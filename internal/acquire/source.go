// SPDX-License-Identifier: MPL-2.0

package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/stratalaunch/strata/pkg/artifact"
)

type (
	// Source opens the archive of a coordinate. Open returns an error wrapping
	// ErrNotFound when the source does not hold the coordinate, and a
	// *TransientError for failures worth retrying.
	Source interface {
		Name() string
		Open(ctx context.Context, c artifact.Coordinate) (io.ReadCloser, error)
	}

	// HTTPRepository serves archives from a Maven-layout HTTP repository.
	HTTPRepository struct {
		name    string
		baseURL string
		client  *http.Client
	}

	// DirectoryRepository serves archives from a Maven-layout local directory.
	DirectoryRepository struct {
		name string
		root string
	}

	// uriSource serves exactly one explicitly configured location.
	uriSource struct {
		uri    string
		client *http.Client
	}
)

// NewRepository returns the Source for a configured repository URL.
// http and https URLs become an HTTPRepository, file URLs a DirectoryRepository.
func NewRepository(name, rawURL string, client *http.Client) (Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("repository %q: %w", name, err)
	}
	switch u.Scheme {
	case "http", "https":
		return NewHTTPRepository(name, rawURL, client), nil
	case "file":
		return NewDirectoryRepository(name, fileURLPath(u)), nil
	default:
		return nil, fmt.Errorf("repository %q: unsupported URL scheme %q (want http, https or file)", name, u.Scheme)
	}
}

// NewHTTPRepository returns a repository rooted at baseURL. A nil client
// means http.DefaultClient; per-request deadlines come from the context.
func NewHTTPRepository(name, baseURL string, client *http.Client) *HTTPRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRepository{name: name, baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

// Name returns the repository name.
func (r *HTTPRepository) Name() string { return r.name }

// Open requests the coordinate's repository path.
func (r *HTTPRepository) Open(ctx context.Context, c artifact.Coordinate) (io.ReadCloser, error) {
	return httpGet(ctx, r.client, r.baseURL+"/"+c.RepositoryPath())
}

// NewDirectoryRepository returns a repository rooted at dir.
func NewDirectoryRepository(name, dir string) *DirectoryRepository {
	return &DirectoryRepository{name: name, root: dir}
}

// Name returns the repository name.
func (r *DirectoryRepository) Name() string { return r.name }

// Open opens the coordinate's repository path below the root.
func (r *DirectoryRepository) Open(_ context.Context, c artifact.Coordinate) (io.ReadCloser, error) {
	return openFile(filepath.Join(r.root, filepath.FromSlash(c.RepositoryPath())))
}

func (s *uriSource) Name() string { return s.uri }

func (s *uriSource) Open(ctx context.Context, _ artifact.Coordinate) (io.ReadCloser, error) {
	u, err := url.Parse(s.uri)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https":
		return httpGet(ctx, s.client, s.uri)
	case "file":
		return openFile(fileURLPath(u))
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

func httpGet(ctx context.Context, client *http.Client, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", rawURL, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusRequestTimeout ||
		resp.StatusCode >= http.StatusInternalServerError:
		_ = resp.Body.Close()
		return nil, &TransientError{Err: fmt.Errorf("%s: HTTP %d", rawURL, resp.StatusCode)}
	default:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s: HTTP %d", rawURL, resp.StatusCode)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// fileURLPath converts a file URL into a local path, accepting both
// file:///abs/path and the relative file:rel/path form.
func fileURLPath(u *url.URL) string {
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	if u.Host != "" && u.Host != "localhost" {
		p = "//" + u.Host + p
	}
	return filepath.FromSlash(p)
}
