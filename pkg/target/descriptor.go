// SPDX-License-Identifier: MPL-2.0

package target

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/stratalaunch/strata/pkg/platform"
)

const (
	// TransformAccessWidener widens class, method or field access.
	TransformAccessWidener TransformKind = "access-widener"
	// TransformPatchConfig is a set of structural bytecode patches.
	TransformPatchConfig TransformKind = "patch-config"
)

var (
	// ErrInvalidDescriptor is the sentinel error wrapped by InvalidDescriptorError.
	ErrInvalidDescriptor = errors.New("invalid target descriptor")
	// ErrUnknownTarget is the sentinel error wrapped by UnknownTargetError.
	ErrUnknownTarget = errors.New("unknown target")
)

type (
	// TransformKind tags a TransformSpec.
	TransformKind string

	// TransformSpec references a transform resource by name. The resource is
	// resolved within the composed classpath, never by discovery order.
	TransformSpec struct {
		Kind     TransformKind `json:"kind" yaml:"kind"`
		Resource string        `json:"resource" yaml:"resource"`
	}

	// Descriptor describes one deployment target. Descriptors are read-only
	// once loaded.
	Descriptor struct {
		ID             string          `json:"id" yaml:"id"`
		Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
		LayerOrder     []LayerName     `json:"layer_order" yaml:"layer_order"`
		ProvidedLayers []LayerName     `json:"provided_layers" yaml:"provided_layers"`
		Transforms     []TransformSpec `json:"transforms" yaml:"transforms"`
		MainClass      string          `json:"main_class,omitempty" yaml:"main_class,omitempty"`
	}

	// InvalidDescriptorError collects every problem found in a Descriptor.
	// It wraps ErrInvalidDescriptor for errors.Is() compatibility.
	InvalidDescriptorError struct {
		ID          string
		FieldErrors []error
	}

	// UnknownTargetError is returned when a target id is not in the catalogue.
	// It wraps ErrUnknownTarget for errors.Is() compatibility.
	UnknownTargetError struct {
		ID    string
		Known []string
	}
)

// String returns "kind:resource".
func (s TransformSpec) String() string { return string(s.Kind) + ":" + s.Resource }

// Validate checks the kind tag and that a resource is named.
func (s TransformSpec) Validate() error {
	switch s.Kind {
	case TransformAccessWidener, TransformPatchConfig:
	default:
		return fmt.Errorf("unknown transform kind %q", s.Kind)
	}
	if strings.TrimSpace(s.Resource) == "" {
		return fmt.Errorf("%s transform has no resource", s.Kind)
	}
	return nil
}

// Provides reports whether the target's host supplies layer l.
func (d *Descriptor) Provides(l LayerName) bool {
	return slices.Contains(d.ProvidedLayers, l)
}

// OwnedLayers returns the layers the launcher must compose itself, in order.
func (d *Descriptor) OwnedLayers() []LayerName {
	owned := make([]LayerName, 0, len(d.LayerOrder))
	for _, l := range d.LayerOrder {
		if !d.Provides(l) {
			owned = append(owned, l)
		}
	}
	return owned
}

// Validate enforces the descriptor invariants: layer_order is exactly the
// four layers in their fixed order, provided_layers is a duplicate-free
// subset of it, and every transform is well formed.
func (d *Descriptor) Validate() error {
	var errs []error

	if strings.TrimSpace(d.ID) == "" {
		errs = append(errs, errors.New("id must not be empty"))
	} else if platform.IsReservedFileName(d.ID) {
		// The id names the emitted manifest file.
		errs = append(errs, fmt.Errorf("id %q is a reserved file name on Windows", d.ID))
	}

	if !slices.Equal(d.LayerOrder, canonicalOrder) {
		for _, l := range d.LayerOrder {
			if err := l.Validate(); err != nil {
				errs = append(errs, err)
			}
		}
		errs = append(errs, fmt.Errorf("layer_order %v must be exactly %v", d.LayerOrder, canonicalOrder))
	}

	seen := make(map[LayerName]bool, len(d.ProvidedLayers))
	for _, l := range d.ProvidedLayers {
		if err := l.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[l] {
			errs = append(errs, fmt.Errorf("provided layer %q listed twice", l))
		}
		seen[l] = true
	}

	for i, s := range d.Transforms {
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("transforms[%d]: %w", i, err))
		}
	}

	if len(errs) > 0 {
		return &InvalidDescriptorError{ID: d.ID, FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid target descriptor %q: %v", e.ID, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidDescriptor for errors.Is() compatibility.
func (e *InvalidDescriptorError) Unwrap() error { return ErrInvalidDescriptor }

// Error implements the error interface.
func (e *UnknownTargetError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown target %q (no targets defined)", e.ID)
	}
	return fmt.Sprintf("unknown target %q (available: %s)", e.ID, strings.Join(e.Known, ", "))
}

// Unwrap returns ErrUnknownTarget for errors.Is() compatibility.
func (e *UnknownTargetError) Unwrap() error { return ErrUnknownTarget }
