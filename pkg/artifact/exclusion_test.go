// SPDX-License-Identifier: MPL-2.0

package artifact

import "testing"

func TestExclusionSetExcludes(t *testing.T) {
	t.Parallel()

	set := NewExclusionSet(
		Exclusion{Group: "org.ow2.asm"},
		Exclusion{Group: "com.google.guava", Module: "guava"},
	)

	tests := []struct {
		coord Coordinate
		want  bool
	}{
		{Coordinate{Group: "org.ow2.asm", Name: "asm"}, true},
		{Coordinate{Group: "org.ow2.asm", Name: "asm-tree"}, true},
		{Coordinate{Group: "com.google.guava", Name: "guava"}, true},
		{Coordinate{Group: "com.google.guava", Name: "failureaccess"}, false},
		{Coordinate{Group: "org.slf4j", Name: "slf4j-api"}, false},
	}

	for _, tt := range tests {
		if got := set.Excludes(tt.coord); got != tt.want {
			t.Errorf("Excludes(%s) = %v, want %v", tt.coord, got, tt.want)
		}
	}
}

func TestExclusionSetNilExcludesNothing(t *testing.T) {
	t.Parallel()

	var set *ExclusionSet
	if set.Excludes(Coordinate{Group: "a", Name: "b"}) {
		t.Error("nil set must not exclude")
	}
	if set.Len() != 0 || set.Entries() != nil {
		t.Error("nil set should be empty")
	}
}

func TestExclusionSetUnion(t *testing.T) {
	t.Parallel()

	platform := NewExclusionSet(Exclusion{Group: "org.slf4j", Module: "slf4j-api"})
	host := NewExclusionSet(Exclusion{Group: "org.ow2.asm"}, Exclusion{Group: "org.slf4j", Module: "slf4j-api"})

	union := platform.Union(host)
	if union.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", union.Len())
	}
	entries := union.Entries()
	if entries[0].String() != "org.ow2.asm:*" || entries[1].String() != "org.slf4j:slf4j-api" {
		t.Errorf("Entries() = %v", entries)
	}
	if platform.Len() != 1 {
		t.Error("Union must not mutate the receiver")
	}
}

func TestNewExclusionSetSkipsEmptyGroup(t *testing.T) {
	t.Parallel()

	if got := NewExclusionSet(Exclusion{Module: "x"}).Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}
