// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"fmt"

	"github.com/stratalaunch/strata/pkg/artifact"
	"github.com/stratalaunch/strata/pkg/cueutil"
)

//go:embed requirements_schema.cue
var requirementsSchema []byte

type (
	// Requirements is the packaging-time input to emission: every bucket any
	// target may need plus the platform- and host-provided exclusions.
	Requirements struct {
		Buckets    []Bucket          `json:"buckets"`
		Exclusions ExclusionSettings `json:"exclusions"`
	}

	// ExclusionSettings holds the exclusion declarations of a requirements file.
	ExclusionSettings struct {
		// Platform lists libraries the runtime platform always provides.
		Platform []artifact.Exclusion `json:"platform,omitempty"`
		// Hosts lists, per target id, libraries that target's host loader provides.
		Hosts map[string][]artifact.Exclusion `json:"hosts,omitempty"`
	}
)

// LoadRequirements reads a CUE requirements file validated against #Requirements.
func LoadRequirements(path string) (*Requirements, error) {
	result, err := cueutil.ParseFile[Requirements](requirementsSchema, path, "#Requirements")
	if err != nil {
		return nil, err
	}
	if err := result.Value.normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result.Value, nil
}

// ParseRequirements decodes requirements from CUE source.
func ParseRequirements(data []byte, filename string) (*Requirements, error) {
	result, err := cueutil.ParseAndDecode[Requirements](requirementsSchema, data, "#Requirements", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	if err := result.Value.normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return result.Value, nil
}

// ExclusionsFor returns the platform exclusions united with those of the
// host of target id.
func (r *Requirements) ExclusionsFor(id string) *artifact.ExclusionSet {
	return artifact.NewExclusionSet(r.Exclusions.Platform...).
		Union(artifact.NewExclusionSet(r.Exclusions.Hosts[id]...))
}

// normalize rewrites every hash into canonical "<algorithm>:<lowercase hex>" form.
func (r *Requirements) normalize() error {
	return normalizeHashes(r.Buckets)
}
