// SPDX-License-Identifier: MPL-2.0

package acquire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stratalaunch/strata/pkg/artifact"
)

var (
	// ErrHashMismatch is the sentinel error wrapped by HashMismatchError.
	ErrHashMismatch = errors.New("hash mismatch")
	// ErrFetchUnavailable is the sentinel error wrapped by FetchUnavailableError.
	ErrFetchUnavailable = errors.New("fetch unavailable")
	// ErrMissingSource is the sentinel error wrapped by MissingSourceError.
	ErrMissingSource = errors.New("missing source")

	// ErrCache is the sentinel error wrapped by CacheError.
	ErrCache = errors.New("artifact cache failure")

	// ErrNotFound is returned by a Source that does not hold the coordinate.
	ErrNotFound = errors.New("artifact not found")
)

type (
	// HashMismatchError is returned when content does not hash to the value
	// the manifest declares. It is never retried or repaired.
	HashMismatchError struct {
		Coordinate artifact.Coordinate
		Want       artifact.ContentHash
		Got        artifact.ContentHash
		// Location is the cached file or the source the content came from.
		Location string
		// Cached is true when an existing cache entry failed verification.
		Cached bool
	}

	// FetchUnavailableError is returned when every source that might hold the
	// coordinate failed transiently, after retries were exhausted.
	FetchUnavailableError struct {
		Coordinate artifact.Coordinate
		Source     string
		Attempts   int
		Err        error
	}

	// MissingSourceError is returned when no configured source recognizes
	// the coordinate.
	MissingSourceError struct {
		Coordinate artifact.Coordinate
		Tried      []string
	}

	// CacheError is returned when the local cache cannot be read or
	// written. No other source is tried after it.
	CacheError struct {
		Coordinate artifact.Coordinate
		Err        error
	}

	// TransientError marks a source failure worth retrying: network errors,
	// timeouts, and server-side HTTP statuses.
	TransientError struct {
		Err error
	}
)

// Error implements the error interface.
func (e *HashMismatchError) Error() string {
	where := "fetched from"
	if e.Cached {
		where = "cached at"
	}
	return fmt.Sprintf("hash mismatch for %s %s %s: want %s, got %s", e.Coordinate, where, e.Location, e.Want, e.Got)
}

// Unwrap returns ErrHashMismatch for errors.Is() compatibility.
func (e *HashMismatchError) Unwrap() error { return ErrHashMismatch }

// Error implements the error interface.
func (e *FetchUnavailableError) Error() string {
	return fmt.Sprintf("fetching %s from %s failed after %d attempt(s): %v", e.Coordinate, e.Source, e.Attempts, e.Err)
}

// Unwrap returns ErrFetchUnavailable and the underlying cause.
func (e *FetchUnavailableError) Unwrap() []error { return []error{ErrFetchUnavailable, e.Err} }

// Error implements the error interface.
func (e *MissingSourceError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("no source configured for %s", e.Coordinate)
	}
	return fmt.Sprintf("no source recognizes %s (tried %s)", e.Coordinate, strings.Join(e.Tried, "; "))
}

// Unwrap returns ErrMissingSource for errors.Is() compatibility.
func (e *MissingSourceError) Unwrap() error { return ErrMissingSource }

// Error implements the error interface.
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache failure for %s: %v", e.Coordinate, e.Err)
}

// Unwrap returns ErrCache and the underlying cause.
func (e *CacheError) Unwrap() []error { return []error{ErrCache, e.Err} }

// Error implements the error interface.
func (e *TransientError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error.
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
