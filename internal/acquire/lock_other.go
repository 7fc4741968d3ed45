// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package acquire

import "errors"

// errFlockUnavailable makes the cache fall back to its in-process mutex.
var errFlockUnavailable = errors.New("flock not available on this platform")

// lockEntry always fails outside Linux.
func lockEntry(string) (*entryLock, error) {
	return nil, errFlockUnavailable
}

// entryLock is the non-Linux stub.
type entryLock struct{}

// Release is a no-op on non-Linux platforms.
func (l *entryLock) Release() error { return nil }
