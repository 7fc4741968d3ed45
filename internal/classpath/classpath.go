// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"os"
	"strings"

	"github.com/stratalaunch/strata/pkg/artifact"
	"github.com/stratalaunch/strata/pkg/target"
)

const (
	// OriginAcquired marks entries materialized from the manifest.
	OriginAcquired Origin = "acquired"
	// OriginLocal marks entries taken from a local layer output.
	OriginLocal Origin = "local"
)

type (
	// Origin records where a classpath entry came from.
	Origin string

	// Entry is one classpath location tagged by its layer.
	Entry struct {
		Layer    target.LayerName     `json:"layer" yaml:"layer"`
		Path     string               `json:"path" yaml:"path"`
		Origin   Origin               `json:"origin" yaml:"origin"`
		Artifact *artifact.Coordinate `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	}

	// Resolved is the acquirer's output: verified local files tagged by the
	// layer of the bucket that listed them. Order within a layer carries no
	// meaning.
	Resolved []Entry

	// LocalLayers maps a layer to its build output locations, in order.
	LocalLayers map[target.LayerName][]string

	// Classpath is the ordered, layer-tagged classpath of one launch. It is
	// built fresh for every launch and never persisted.
	Classpath struct {
		Target  string  `json:"target" yaml:"target"`
		Entries []Entry `json:"entries" yaml:"entries"`
	}
)

// key identifies an entry for deduplication within a layer: acquired entries
// by artifact identity, local entries by path.
func (e Entry) key() string {
	if e.Artifact != nil {
		return "artifact:" + e.Artifact.Identity().String()
	}
	return "path:" + e.Path
}

// Layer returns the entries of layer l.
func (r Resolved) Layer(l target.LayerName) []Entry {
	var out []Entry
	for _, e := range r {
		if e.Layer == l {
			out = append(out, e)
		}
	}
	return out
}

// Paths returns the entry locations in classpath order.
func (c *Classpath) Paths() []string {
	paths := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		paths[i] = e.Path
	}
	return paths
}

// String joins the locations with the platform list separator, ready for -cp.
func (c *Classpath) String() string {
	return strings.Join(c.Paths(), string(os.PathListSeparator))
}

// Layers returns the distinct layer tags in the order they appear.
func (c *Classpath) Layers() []target.LayerName {
	var out []target.LayerName
	for _, e := range c.Entries {
		if len(out) == 0 || out[len(out)-1] != e.Layer {
			out = append(out, e.Layer)
		}
	}
	return out
}

// Segment returns the entries of layer l.
func (c *Classpath) Segment(l target.LayerName) []Entry {
	return Resolved(c.Entries).Layer(l)
}
