// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared by the launcher packages.
package types

import (
	"errors"
	"fmt"
	"strconv"
)

// Reserved launcher exit codes. A successful handoff propagates the main
// layer's own status instead.
const (
	// ExitSuccess is returned when the main layer exits cleanly.
	ExitSuccess ExitCode = 0
	// ExitFailure is returned for failures outside the launcher taxonomy.
	ExitFailure ExitCode = 1
	// ExitUnknownTarget is returned when the requested target id is not in the catalogue.
	ExitUnknownTarget ExitCode = 64
	// ExitManifestConflict is returned when a manifest pins one identity to two hashes.
	ExitManifestConflict ExitCode = 65
	// ExitHashMismatch is returned when fetched or cached content fails verification.
	ExitHashMismatch ExitCode = 66
	// ExitFetchUnavailable is returned when a source stayed unreachable after all retries.
	ExitFetchUnavailable ExitCode = 67
	// ExitLayerMissing is returned when a non-provided layer has no classpath segment.
	ExitLayerMissing ExitCode = 68
	// ExitTransformConflict is returned when two patches modify one location incompatibly.
	ExitTransformConflict ExitCode = 69
	// ExitUnresolvedReference is returned when a transform names a symbol absent from the classpath.
	ExitUnresolvedReference ExitCode = 70
	// ExitMissingSource is returned when no configured source recognizes a coordinate.
	ExitMissingSource ExitCode = 71
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// IsReserved reports whether the code belongs to the launcher's own
// failure taxonomy rather than to the launched process.
func (c ExitCode) IsReserved() bool {
	return c >= ExitUnknownTarget && c <= ExitMissingSource
}

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
