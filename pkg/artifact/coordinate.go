// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"cmp"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalidCoordinate is the sentinel error wrapped by InvalidCoordinateError.
var ErrInvalidCoordinate = errors.New("invalid artifact coordinate")

type (
	// Identity is the stable identity of a library: version and hash are not part of it.
	Identity struct {
		Group      string
		Name       string
		Classifier string
	}

	// Coordinate is one pinned library: identity, version, content hash and an
	// optional explicit source URI.
	Coordinate struct {
		Group      string      `json:"group" toml:"group" yaml:"group"`
		Name       string      `json:"name" toml:"name" yaml:"name"`
		Version    string      `json:"version" toml:"version" yaml:"version"`
		Classifier string      `json:"classifier,omitempty" toml:"classifier,omitempty" yaml:"classifier,omitempty"`
		Hash       ContentHash `json:"hash" toml:"hash" yaml:"hash"`
		Source     string      `json:"source,omitempty" toml:"source,omitempty" yaml:"source,omitempty"`
	}

	// InvalidCoordinateError collects the field-level problems of a Coordinate.
	// It wraps ErrInvalidCoordinate for errors.Is() compatibility.
	InvalidCoordinateError struct {
		Coordinate  string
		FieldErrors []error
	}
)

// String renders the identity as group:name[:classifier].
func (i Identity) String() string {
	if i.Classifier == "" {
		return i.Group + ":" + i.Name
	}
	return i.Group + ":" + i.Name + ":" + i.Classifier
}

// CompareIdentity orders identities by group, name, then classifier.
func CompareIdentity(a, b Identity) int {
	if c := cmp.Compare(a.Group, b.Group); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Classifier, b.Classifier)
}

// Identity returns the coordinate's identity.
func (c Coordinate) Identity() Identity {
	return Identity{Group: c.Group, Name: c.Name, Classifier: c.Classifier}
}

// String renders the coordinate as group:name:version[:classifier].
func (c Coordinate) String() string {
	s := c.Group + ":" + c.Name + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	return s
}

// FileName returns the conventional archive name, name-version[-classifier].jar.
func (c Coordinate) FileName() string {
	if c.Classifier == "" {
		return c.Name + "-" + c.Version + ".jar"
	}
	return c.Name + "-" + c.Version + "-" + c.Classifier + ".jar"
}

// RepositoryPath returns the Maven repository layout path of the archive,
// e.g. org/ow2/asm/asm/9.7/asm-9.7.jar.
func (c Coordinate) RepositoryPath() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Name, c.Version, c.FileName())
}

// Validate checks that every identity field and the version are usable as
// path elements and that the hash is well formed.
func (c Coordinate) Validate() error {
	var errs []error
	for _, f := range []struct{ name, value string }{
		{"group", c.Group},
		{"name", c.Name},
		{"version", c.Version},
	} {
		if err := validatePathElement(f.name, f.value, true); err != nil {
			errs = append(errs, err)
		}
	}
	if err := validatePathElement("classifier", c.Classifier, false); err != nil {
		errs = append(errs, err)
	}
	if err := c.Hash.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidCoordinateError{Coordinate: c.String(), FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid artifact coordinate %s: %v", e.Coordinate, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidCoordinate for errors.Is() compatibility.
func (e *InvalidCoordinateError) Unwrap() error { return ErrInvalidCoordinate }

func validatePathElement(field, value string, required bool) error {
	if value == "" {
		if required {
			return fmt.Errorf("%s must not be empty", field)
		}
		return nil
	}
	if strings.TrimSpace(value) != value {
		return fmt.Errorf("%s %q has surrounding whitespace", field, value)
	}
	if value == "." || value == ".." || strings.ContainsAny(value, `/\:`) {
		return fmt.Errorf("%s %q contains a path separator or colon", field, value)
	}
	return nil
}
