// SPDX-License-Identifier: MPL-2.0

package acquire

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/stratalaunch/strata/pkg/artifact"
)

type (
	// Cache is a content-addressed artifact store. Entries live at
	// <root>/<group path>/<name>[~classifier]/<algo>-<hex>/<file>, so two
	// different hashes of one identity never share a location.
	Cache struct {
		root   string
		logger *log.Logger

		mu    sync.Mutex
		locks map[string]*sync.Mutex
	}

	// unlockFunc releases an entry lock.
	unlockFunc func()
)

// NewCache returns a cache rooted at dir. The directory is created lazily.
func NewCache(dir string, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Cache{root: dir, logger: logger, locks: make(map[string]*sync.Mutex)}
}

// EntryDir returns the directory holding the entry for coordinate co.
func (c *Cache) EntryDir(co artifact.Coordinate) string {
	name := co.Name
	if co.Classifier != "" {
		name += "~" + co.Classifier
	}
	return filepath.Join(
		c.root,
		filepath.FromSlash(strings.ReplaceAll(co.Group, ".", "/")),
		name,
		string(co.Hash.Algorithm())+"-"+co.Hash.Hex(),
	)
}

// EntryPath returns the location of co's archive inside the cache.
func (c *Cache) EntryPath(co artifact.Coordinate) string {
	return filepath.Join(c.EntryDir(co), co.FileName())
}

// Lookup re-hashes the cached archive of co. It returns ("", false, nil) on
// a miss and a *HashMismatchError when the cached bytes do not match.
func (c *Cache) Lookup(co artifact.Coordinate) (string, bool, error) {
	path := c.EntryPath(co)
	got, err := artifact.HashFile(path, co.Hash.Algorithm())
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache entry: %w", err)
	}
	if !got.Equal(co.Hash) {
		return "", false, &HashMismatchError{Coordinate: co, Want: co.Hash, Got: got, Location: path, Cached: true}
	}
	return path, true, nil
}

// Store streams r into a temp file inside co's entry directory, verifies the
// content hash, and renames the file into place. Readers never observe a
// partially written entry. The caller must hold the entry lock.
func (c *Cache) Store(co artifact.Coordinate, r io.Reader, location string) (_ string, err error) {
	dir := c.EntryDir(co)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache entry: %w", err)
	}

	h, err := co.Hash.Algorithm().New()
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			// Best-effort removal of the partially written temp file.
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(io.MultiWriter(tmp, h), r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("writing cache entry: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("writing cache entry: %w", err)
	}

	got := artifact.NewContentHash(co.Hash.Algorithm(), h.Sum(nil))
	if !got.Equal(co.Hash) {
		return "", &HashMismatchError{Coordinate: co, Want: co.Hash, Got: got, Location: location}
	}

	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("writing cache entry: %w", err)
	}
	final := c.EntryPath(co)
	if err = os.Rename(tmpPath, final); err != nil {
		return "", fmt.Errorf("renaming cache entry: %w", err)
	}
	return final, nil
}

// Lock takes the exclusive lock of co's entry: an in-process mutex, plus a
// cross-process flock where the platform has one.
func (c *Cache) Lock(co artifact.Coordinate) (unlockFunc, error) {
	dir := c.EntryDir(co)

	c.mu.Lock()
	mu, ok := c.locks[dir]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[dir] = mu
	}
	c.mu.Unlock()

	mu.Lock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("creating cache entry: %w", err)
	}

	fl, err := lockEntry(dir)
	if err != nil {
		if !errors.Is(err, errFlockUnavailable) {
			mu.Unlock()
			return nil, err
		}
		fl = nil
	}

	return func() {
		if fl != nil {
			if err := fl.Release(); err != nil {
				c.logger.Debug("cache lock release failed", "dir", dir, "error", err)
			}
		}
		mu.Unlock()
	}, nil
}
