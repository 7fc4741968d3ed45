// SPDX-License-Identifier: MPL-2.0

package target

import (
	"errors"
	"fmt"
	"slices"
)

const (
	// LayerBootstrap is the pre-launch bootstrap layer.
	LayerBootstrap LayerName = "bootstrap"
	// LayerLaunchSupport holds the launch support libraries.
	LayerLaunchSupport LayerName = "launch-support"
	// LayerPatchDefinitions holds the runtime patch definitions.
	LayerPatchDefinitions LayerName = "patch-definitions"
	// LayerMain is the main application layer.
	LayerMain LayerName = "main"
)

// ErrInvalidLayerName is the sentinel error wrapped by InvalidLayerNameError.
var ErrInvalidLayerName = errors.New("invalid layer name")

type (
	// LayerName names one of the four fixed classpath layers.
	LayerName string

	// InvalidLayerNameError is returned when a LayerName is not one of the four layers.
	InvalidLayerNameError struct {
		Value LayerName
	}
)

// canonicalOrder is the only legal layer order.
var canonicalOrder = []LayerName{LayerBootstrap, LayerLaunchSupport, LayerPatchDefinitions, LayerMain}

// Layers returns the four layers in their fixed order.
func Layers() []LayerName {
	return slices.Clone(canonicalOrder)
}

// Index returns the layer's position in the fixed order, or -1.
func (l LayerName) Index() int {
	return slices.Index(canonicalOrder, l)
}

// Validate returns an error when l is not one of the four layers.
func (l LayerName) Validate() error {
	if l.Index() < 0 {
		return &InvalidLayerNameError{Value: l}
	}
	return nil
}

// String returns the layer name.
func (l LayerName) String() string { return string(l) }

// Error implements the error interface.
func (e *InvalidLayerNameError) Error() string {
	return fmt.Sprintf("invalid layer name %q (valid: %v)", e.Value, canonicalOrder)
}

// Unwrap returns ErrInvalidLayerName for errors.Is() compatibility.
func (e *InvalidLayerNameError) Unwrap() error { return ErrInvalidLayerName }
