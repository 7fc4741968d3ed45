// SPDX-License-Identifier: MPL-2.0

//go:build linux

package acquire

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lockFileName is created inside each cache entry directory. An orphaned
// zero-byte lock file is harmless: the kernel drops the flock when the fd
// closes, including on crash.
const lockFileName = ".lock"

// errFlockUnavailable is defined for parity with lock_other.go. On Linux,
// lockEntry never returns it.
var errFlockUnavailable = errors.New("flock not available on this platform")

// entryLock holds a blocking exclusive flock on a cache entry, serializing
// writers across strata processes sharing one cache directory.
type entryLock struct {
	file *os.File
}

// lockEntry opens (or creates) dir's lock file and blocks until it holds an
// exclusive flock on it.
func lockEntry(dir string) (*entryLock, error) {
	path := filepath.Join(dir, lockFileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	return &entryLock{file: f}, nil
}

// Release unlocks and closes the lock file. Subsequent calls are no-ops.
func (l *entryLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	return errors.Join(unlockErr, closeErr)
}
