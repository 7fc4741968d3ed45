// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/stratalaunch/strata/pkg/artifact"
	"github.com/stratalaunch/strata/pkg/target"
)

// Emit computes, for every bucket, the required artifacts minus the
// exclusions and returns the resulting manifest.
//
// Conflicting hash pins are detected over the full required set, before any
// exclusion is applied, and fail with *ManifestConflictError. Repeated
// entries with the same identity and hash collapse to one. The result is
// canonical: buckets sorted by name, artifacts by identity, and buckets left
// empty by exclusion dropped.
func Emit(name string, required []Bucket, exclusions *artifact.ExclusionSet) (*Manifest, error) {
	var errs []error
	names := make(map[string]bool, len(required))
	for _, b := range required {
		if err := validateBucketHeader(b); err != nil {
			errs = append(errs, err)
		}
		if names[b.Name] {
			errs = append(errs, fmt.Errorf("bucket %q defined more than once", b.Name))
		}
		names[b.Name] = true
		for _, c := range b.Artifacts {
			if err := c.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("bucket %q: %w", b.Name, err))
			}
		}
	}
	if strings.TrimSpace(name) == "" {
		errs = append(errs, fmt.Errorf("manifest name must not be empty"))
	}
	if len(errs) > 0 {
		return nil, &InvalidManifestError{Name: name, FieldErrors: errs}
	}

	if err := checkConsistency(required); err != nil {
		return nil, err
	}

	m := &Manifest{Format: FormatVersion, Name: name}
	for _, b := range required {
		kept := make([]artifact.Coordinate, 0, len(b.Artifacts))
		seen := make(map[artifact.Identity]bool, len(b.Artifacts))
		for _, c := range b.Artifacts {
			if exclusions.Excludes(c) || seen[c.Identity()] {
				continue
			}
			seen[c.Identity()] = true
			kept = append(kept, c)
		}
		if len(kept) == 0 {
			continue
		}
		slices.SortFunc(kept, func(a, b artifact.Coordinate) int {
			return artifact.CompareIdentity(a.Identity(), b.Identity())
		})
		m.Buckets = append(m.Buckets, Bucket{Name: b.Name, Layer: b.Layer, Artifacts: kept})
	}
	slices.SortFunc(m.Buckets, func(a, b Bucket) int { return strings.Compare(a.Name, b.Name) })

	return m, nil
}

// EmitForTarget emits the manifest of target d from a requirements file:
// buckets whose layer the target's host provides are left out, and the
// exclusions are the platform set united with the host set declared for d.
func EmitForTarget(req *Requirements, d *target.Descriptor) (*Manifest, error) {
	required := make([]Bucket, 0, len(req.Buckets))
	for _, b := range req.Buckets {
		if d.Provides(b.Layer) {
			continue
		}
		required = append(required, b)
	}
	return Emit(d.ID, required, req.ExclusionsFor(d.ID))
}
