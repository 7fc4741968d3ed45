// SPDX-License-Identifier: MPL-2.0

package target

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/stratalaunch/strata/pkg/cueutil"
)

var (
	//go:embed targets_schema.cue
	targetsSchema []byte

	//go:embed builtin_targets.cue
	builtinTargets []byte

	builtinOnce = sync.OnceValues(func() (*Catalogue, error) {
		return parseCatalogue(builtinTargets, "builtin_targets.cue")
	})
)

type (
	// Catalogue is an immutable, id-indexed set of target descriptors.
	Catalogue struct {
		targets []Descriptor
		byID    map[string]int
	}

	catalogueFile struct {
		Targets []Descriptor `json:"targets"`
	}
)

// NewCatalogue validates every descriptor and indexes them by id.
// Duplicate ids are rejected.
func NewCatalogue(descriptors ...Descriptor) (*Catalogue, error) {
	c := &Catalogue{
		targets: make([]Descriptor, 0, len(descriptors)),
		byID:    make(map[string]int, len(descriptors)),
	}
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("target %q defined more than once", d.ID)
		}
		c.byID[d.ID] = len(c.targets)
		c.targets = append(c.targets, d)
	}
	return c, nil
}

// Builtin returns the catalogue compiled into the binary.
func Builtin() (*Catalogue, error) {
	return builtinOnce()
}

// LoadCatalogue reads a CUE target catalogue from path.
func LoadCatalogue(path string) (*Catalogue, error) {
	result, err := cueutil.ParseFile[catalogueFile](targetsSchema, path, "#Targets")
	if err != nil {
		return nil, err
	}
	return NewCatalogue(result.Value.Targets...)
}

func parseCatalogue(data []byte, filename string) (*Catalogue, error) {
	result, err := cueutil.ParseAndDecode[catalogueFile](targetsSchema, data, "#Targets", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return NewCatalogue(result.Value.Targets...)
}

// Lookup returns the descriptor for id or an *UnknownTargetError.
func (c *Catalogue) Lookup(id string) (*Descriptor, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, &UnknownTargetError{ID: id, Known: c.IDs()}
	}
	d := c.targets[i]
	return &d, nil
}

// IDs returns the target ids in catalogue order.
func (c *Catalogue) IDs() []string {
	ids := make([]string, len(c.targets))
	for i, d := range c.targets {
		ids[i] = d.ID
	}
	return ids
}

// Targets returns a copy of the descriptors in catalogue order.
func (c *Catalogue) Targets() []Descriptor {
	out := make([]Descriptor, len(c.targets))
	copy(out, c.targets)
	return out
}
