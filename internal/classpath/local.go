// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/stratalaunch/strata/pkg/target"
)

// ResolveLocal expands the doublestar glob patterns configured per layer into
// absolute locations. Relative patterns are resolved against baseDir. Each
// pattern's matches keep doublestar's lexical order; a location matched by
// several patterns appears once. A pattern that matches nothing is not an
// error: Compose reports the layer if it ends up empty.
func ResolveLocal(baseDir string, patterns map[string][]string) (LocalLayers, error) {
	out := make(LocalLayers, len(patterns))
	for name, globs := range patterns {
		layer := target.LayerName(name)
		if err := layer.Validate(); err != nil {
			return nil, fmt.Errorf("local layer patterns: %w", err)
		}

		seen := make(map[string]bool)
		for _, pattern := range globs {
			if !filepath.IsAbs(pattern) {
				pattern = filepath.Join(baseDir, pattern)
			}
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				return nil, fmt.Errorf("layer %q: pattern %q: %w", layer, pattern, err)
			}
			for _, m := range matches {
				abs, err := filepath.Abs(m)
				if err != nil {
					return nil, fmt.Errorf("layer %q: %w", layer, err)
				}
				if seen[abs] {
					continue
				}
				seen[abs] = true
				out[layer] = append(out[layer], abs)
			}
		}
	}
	return out, nil
}
