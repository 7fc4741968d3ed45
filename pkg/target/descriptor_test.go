// SPDX-License-Identifier: MPL-2.0

package target

import (
	"errors"
	"slices"
	"testing"
)

func validDescriptor() Descriptor {
	return Descriptor{
		ID:             "forge",
		LayerOrder:     Layers(),
		ProvidedLayers: []LayerName{LayerBootstrap, LayerLaunchSupport},
		Transforms: []TransformSpec{
			{Kind: TransformAccessWidener, Resource: "a.accesswidener"},
			{Kind: TransformPatchConfig, Resource: "p.json"},
		},
	}
}

func TestLayerNameValidate(t *testing.T) {
	t.Parallel()

	for _, l := range Layers() {
		if err := l.Validate(); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", l, err)
		}
	}

	err := LayerName("assets").Validate()
	if !errors.Is(err, ErrInvalidLayerName) {
		t.Fatalf("Validate(assets) = %v, want ErrInvalidLayerName", err)
	}
}

func TestLayerIndexMatchesFixedOrder(t *testing.T) {
	t.Parallel()

	want := map[LayerName]int{
		LayerBootstrap:        0,
		LayerLaunchSupport:    1,
		LayerPatchDefinitions: 2,
		LayerMain:             3,
		"other":               -1,
	}
	for l, idx := range want {
		if got := l.Index(); got != idx {
			t.Errorf("%q.Index() = %d, want %d", l, got, idx)
		}
	}
}

func TestDescriptorValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(d *Descriptor)
		wantErr bool
	}{
		{"valid hosted", func(*Descriptor) {}, false},
		{"valid standalone", func(d *Descriptor) { d.ProvidedLayers = nil }, false},
		{"empty id", func(d *Descriptor) { d.ID = " " }, true},
		{"windows device id", func(d *Descriptor) { d.ID = "aux" }, true},
		{"reordered layers", func(d *Descriptor) {
			d.LayerOrder = []LayerName{LayerLaunchSupport, LayerBootstrap, LayerPatchDefinitions, LayerMain}
		}, true},
		{"missing layer", func(d *Descriptor) { d.LayerOrder = d.LayerOrder[:3] }, true},
		{"unknown provided layer", func(d *Descriptor) { d.ProvidedLayers = []LayerName{"assets"} }, true},
		{"duplicate provided layer", func(d *Descriptor) {
			d.ProvidedLayers = []LayerName{LayerBootstrap, LayerBootstrap}
		}, true},
		{"unknown transform kind", func(d *Descriptor) { d.Transforms[0].Kind = "mixin" }, true},
		{"transform without resource", func(d *Descriptor) { d.Transforms[1].Resource = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := validDescriptor()
			tt.mutate(&d)
			err := d.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("Validate() error does not wrap ErrInvalidDescriptor: %v", err)
			}
		})
	}
}

func TestDescriptorOwnedLayers(t *testing.T) {
	t.Parallel()

	d := validDescriptor()
	got := d.OwnedLayers()
	want := []LayerName{LayerPatchDefinitions, LayerMain}
	if !slices.Equal(got, want) {
		t.Errorf("OwnedLayers() = %v, want %v", got, want)
	}
	if !d.Provides(LayerBootstrap) || d.Provides(LayerMain) {
		t.Error("Provides() disagrees with ProvidedLayers")
	}
}

func TestUnknownTargetErrorMessage(t *testing.T) {
	t.Parallel()

	err := &UnknownTargetError{ID: "quilt", Known: []string{"vanilla", "forge"}}
	if got, want := err.Error(), `unknown target "quilt" (available: vanilla, forge)`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrUnknownTarget) {
		t.Error("UnknownTargetError does not wrap ErrUnknownTarget")
	}
}
