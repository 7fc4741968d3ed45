// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stratalaunch/strata/pkg/artifact"
	"github.com/stratalaunch/strata/pkg/target"
)

// FormatVersion is the only manifest format this build reads and writes.
const FormatVersion = 1

var (
	// ErrManifestConflict is the sentinel error wrapped by ManifestConflictError.
	ErrManifestConflict = errors.New("manifest conflict")
	// ErrInvalidManifest is the sentinel error wrapped by InvalidManifestError.
	ErrInvalidManifest = errors.New("invalid manifest")
)

type (
	// Bucket is a named set of artifacts that all belong to one layer.
	Bucket struct {
		Name      string                `json:"name" toml:"name" yaml:"name"`
		Layer     target.LayerName      `json:"layer" toml:"layer" yaml:"layer"`
		Artifacts []artifact.Coordinate `json:"artifacts" toml:"artifact,omitempty" yaml:"artifacts"`
	}

	// Manifest is the externally required library set of one target.
	Manifest struct {
		Format  int      `json:"format" toml:"format" yaml:"format"`
		Name    string   `json:"name" toml:"name" yaml:"name"`
		Buckets []Bucket `json:"buckets" toml:"bucket,omitempty" yaml:"buckets"`
	}

	// Placement locates one coordinate inside a manifest.
	Placement struct {
		Bucket     string
		Coordinate artifact.Coordinate
	}

	// ManifestConflictError is returned when two entries share an identity but
	// pin different content hashes. Neither entry wins.
	ManifestConflictError struct {
		Identity artifact.Identity
		First    Placement
		Second   Placement
	}

	// InvalidManifestError collects structural problems found while loading or
	// emitting a manifest. It wraps ErrInvalidManifest for errors.Is() compatibility.
	InvalidManifestError struct {
		Name        string
		FieldErrors []error
	}
)

// Error implements the error interface.
func (e *ManifestConflictError) Error() string {
	return fmt.Sprintf("manifest conflict for %s: bucket %q pins %s (%s) but bucket %q pins %s (%s)",
		e.Identity,
		e.First.Bucket, e.First.Coordinate.Version, e.First.Coordinate.Hash,
		e.Second.Bucket, e.Second.Coordinate.Version, e.Second.Coordinate.Hash)
}

// Unwrap returns ErrManifestConflict for errors.Is() compatibility.
func (e *ManifestConflictError) Unwrap() error { return ErrManifestConflict }

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid manifest %q: %v", e.Name, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidManifest for errors.Is() compatibility.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }

// Bucket returns the bucket with the given name, or nil.
func (m *Manifest) Bucket(name string) *Bucket {
	for i := range m.Buckets {
		if m.Buckets[i].Name == name {
			return &m.Buckets[i]
		}
	}
	return nil
}

// Layer returns every coordinate assigned to layer l, across all buckets,
// in manifest order.
func (m *Manifest) Layer(l target.LayerName) []artifact.Coordinate {
	var out []artifact.Coordinate
	for _, b := range m.Buckets {
		if b.Layer == l {
			out = append(out, b.Artifacts...)
		}
	}
	return out
}

// Coordinates returns each distinct (identity, hash) pair once, in manifest order.
func (m *Manifest) Coordinates() []artifact.Coordinate {
	seen := make(map[artifact.Identity]bool)
	var out []artifact.Coordinate
	for _, b := range m.Buckets {
		for _, c := range b.Artifacts {
			if seen[c.Identity()] {
				continue
			}
			seen[c.Identity()] = true
			out = append(out, c)
		}
	}
	return out
}

// Validate checks the format version, bucket names and layers, every
// coordinate, set semantics within each bucket, and hash consistency across
// the whole manifest. Hash disagreements are reported as *ManifestConflictError.
func (m *Manifest) Validate() error {
	if err := checkConsistency(m.Buckets); err != nil {
		return err
	}

	var errs []error
	if m.Format != FormatVersion {
		errs = append(errs, fmt.Errorf("unsupported format %d (want %d)", m.Format, FormatVersion))
	}
	if strings.TrimSpace(m.Name) == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}

	names := make(map[string]bool, len(m.Buckets))
	for _, b := range m.Buckets {
		if err := validateBucketHeader(b); err != nil {
			errs = append(errs, err)
		}
		if names[b.Name] {
			errs = append(errs, fmt.Errorf("bucket %q defined more than once", b.Name))
		}
		names[b.Name] = true

		ids := make(map[artifact.Identity]bool, len(b.Artifacts))
		for _, c := range b.Artifacts {
			if err := c.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("bucket %q: %w", b.Name, err))
			}
			if ids[c.Identity()] {
				errs = append(errs, fmt.Errorf("bucket %q lists %s more than once", b.Name, c.Identity()))
			}
			ids[c.Identity()] = true
		}
	}

	if len(errs) > 0 {
		return &InvalidManifestError{Name: m.Name, FieldErrors: errs}
	}
	return nil
}

func validateBucketHeader(b Bucket) error {
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("bucket name must not be empty")
	}
	if err := b.Layer.Validate(); err != nil {
		return fmt.Errorf("bucket %q: %w", b.Name, err)
	}
	return nil
}

// checkConsistency rejects any identity pinned to two different hashes.
// The same identity with the same hash in two buckets is a shared library and
// is allowed.
func checkConsistency(buckets []Bucket) error {
	first := make(map[artifact.Identity]Placement)
	for _, b := range buckets {
		for _, c := range b.Artifacts {
			id := c.Identity()
			prev, ok := first[id]
			if !ok {
				first[id] = Placement{Bucket: b.Name, Coordinate: c}
				continue
			}
			if !prev.Coordinate.Hash.Equal(c.Hash) {
				return &ManifestConflictError{
					Identity: id,
					First:    prev,
					Second:   Placement{Bucket: b.Name, Coordinate: c},
				}
			}
		}
	}
	return nil
}

// normalizeHashes rewrites every artifact hash into canonical
// "<algorithm>:<lowercase hex>" form.
func normalizeHashes(buckets []Bucket) error {
	for i := range buckets {
		for j := range buckets[i].Artifacts {
			c := &buckets[i].Artifacts[j]
			h, err := artifact.ParseContentHash(string(c.Hash))
			if err != nil {
				return fmt.Errorf("bucket %q, %s: %w", buckets[i].Name, c, err)
			}
			c.Hash = h
		}
	}
	return nil
}
