// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"strings"
	"testing"

	"github.com/stratalaunch/strata/pkg/artifact"
	"github.com/stratalaunch/strata/pkg/target"
)

func TestParseRequirements(t *testing.T) {
	t.Parallel()

	bare := strings.Repeat("A", 64)
	src := `
buckets: [{
	name:  "bootstrap"
	layer: "bootstrap"
	artifacts: [{group: "org.ow2.asm", name: "asm", version: "9.7", hash: "` + bare + `"}]
}]
exclusions: {
	platform: [{group: "org.yaml"}]
	hosts: forge: [{group: "cpw.mods", module: "modlauncher"}]
}
`
	req, err := ParseRequirements([]byte(src), "requirements.cue")
	if err != nil {
		t.Fatalf("ParseRequirements() error = %v", err)
	}

	if len(req.Buckets) != 1 || req.Buckets[0].Layer != target.LayerBootstrap {
		t.Fatalf("buckets = %+v", req.Buckets)
	}
	if got, want := req.Buckets[0].Artifacts[0].Hash, artifact.ContentHash("sha256:"+strings.ToLower(bare)); got != want {
		t.Errorf("hash = %q, want normalized %q", got, want)
	}

	forge := req.ExclusionsFor("forge")
	if forge.Len() != 2 {
		t.Errorf("forge exclusions = %v, want platform + host", forge.Entries())
	}
	if !forge.Excludes(artifact.Coordinate{Group: "cpw.mods", Name: "modlauncher"}) {
		t.Error("forge exclusions miss the host module")
	}
	if req.ExclusionsFor("vanilla").Len() != 1 {
		t.Error("vanilla exclusions should hold the platform entry only")
	}
}

func TestParseRequirementsRejectsSchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"unknown layer", `buckets: [{name: "b", layer: "assets", artifacts: []}]`},
		{"short hash", `buckets: [{name: "b", layer: "main", artifacts: [{group: "g", name: "n", version: "1", hash: "abc"}]}]`},
		{"bad source scheme", `buckets: [{name: "b", layer: "main", artifacts: [{group: "g", name: "n", version: "1", hash: "` +
			strings.Repeat("a", 64) + `", source: "ftp://x"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseRequirements([]byte(tt.src), "requirements.cue"); err == nil {
				t.Fatal("ParseRequirements() accepted invalid input")
			}
		})
	}
}
