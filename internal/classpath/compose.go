// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/stratalaunch/strata/pkg/artifact"
	"github.com/stratalaunch/strata/pkg/target"
)

// ErrLayerMissing is the sentinel error wrapped by LayerMissingError.
var ErrLayerMissing = errors.New("layer missing")

// LayerMissingError is returned when a layer the target owns has neither
// acquired nor local entries.
type LayerMissingError struct {
	Target string
	Layer  target.LayerName
}

// Error implements the error interface.
func (e *LayerMissingError) Error() string {
	return fmt.Sprintf("target %q: layer %q has no acquired artifacts and no local output", e.Target, e.Layer)
}

// Unwrap returns ErrLayerMissing for errors.Is() compatibility.
func (e *LayerMissingError) Unwrap() error { return ErrLayerMissing }

// Compose builds the classpath of target d. For each layer in d.LayerOrder
// that the host does not provide, the acquired segment is appended (sorted by
// identity) followed by the local segment (in the given order); entries are
// deduplicated within the layer.
func Compose(d *target.Descriptor, acquired Resolved, local LocalLayers) (*Classpath, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	cp := &Classpath{Target: d.ID}
	for _, layer := range d.LayerOrder {
		if d.Provides(layer) {
			continue
		}

		seen := make(map[string]bool)
		start := len(cp.Entries)

		segment := acquired.Layer(layer)
		slices.SortStableFunc(segment, compareAcquired)
		for _, e := range segment {
			if seen[e.key()] {
				continue
			}
			seen[e.key()] = true
			e.Layer = layer
			e.Origin = OriginAcquired
			cp.Entries = append(cp.Entries, e)
		}

		for _, p := range local[layer] {
			e := Entry{Layer: layer, Path: p, Origin: OriginLocal}
			if seen[e.key()] {
				continue
			}
			seen[e.key()] = true
			cp.Entries = append(cp.Entries, e)
		}

		if len(cp.Entries) == start {
			return nil, &LayerMissingError{Target: d.ID, Layer: layer}
		}
	}
	return cp, nil
}

func compareAcquired(a, b Entry) int {
	switch {
	case a.Artifact != nil && b.Artifact != nil:
		return artifact.CompareIdentity(a.Artifact.Identity(), b.Artifact.Identity())
	case a.Artifact != nil:
		return -1
	case b.Artifact != nil:
		return 1
	default:
		return cmp.Compare(a.Path, b.Path)
	}
}
