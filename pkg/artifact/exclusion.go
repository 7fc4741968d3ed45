// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"cmp"
	"slices"
)

type (
	// Exclusion names a (group, module) pair that is always supplied by the
	// host or the runtime platform. An empty Module excludes the whole group.
	Exclusion struct {
		Group  string `json:"group"`
		Module string `json:"module,omitempty"`
	}

	// ExclusionSet is an immutable set of exclusions. The zero value and nil
	// exclude nothing.
	ExclusionSet struct {
		entries map[Exclusion]struct{}
	}
)

// String renders the exclusion as group:module or group:*.
func (e Exclusion) String() string {
	if e.Module == "" {
		return e.Group + ":*"
	}
	return e.Group + ":" + e.Module
}

// NewExclusionSet builds a set from the given exclusions. Entries with an
// empty group are ignored.
func NewExclusionSet(exclusions ...Exclusion) *ExclusionSet {
	s := &ExclusionSet{entries: make(map[Exclusion]struct{}, len(exclusions))}
	for _, e := range exclusions {
		if e.Group == "" {
			continue
		}
		s.entries[e] = struct{}{}
	}
	return s
}

// Union returns a new set holding the entries of s and every other set.
func (s *ExclusionSet) Union(others ...*ExclusionSet) *ExclusionSet {
	out := NewExclusionSet(s.Entries()...)
	for _, o := range others {
		for _, e := range o.Entries() {
			out.entries[e] = struct{}{}
		}
	}
	return out
}

// Excludes reports whether the coordinate's (group, name) is excluded.
func (s *ExclusionSet) Excludes(c Coordinate) bool {
	if s == nil || len(s.entries) == 0 {
		return false
	}
	if _, ok := s.entries[Exclusion{Group: c.Group}]; ok {
		return true
	}
	_, ok := s.entries[Exclusion{Group: c.Group, Module: c.Name}]
	return ok
}

// Len returns the number of entries.
func (s *ExclusionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns the exclusions sorted by group then module.
func (s *ExclusionSet) Entries() []Exclusion {
	if s == nil {
		return nil
	}
	out := make([]Exclusion, 0, len(s.entries))
	for e := range s.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Exclusion) int {
		if c := cmp.Compare(a.Group, b.Group); c != 0 {
			return c
		}
		return cmp.Compare(a.Module, b.Module)
	})
	return out
}
