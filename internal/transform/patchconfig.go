// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

const (
	// PatchInject adds code at an injection point; injections compose.
	PatchInject PatchKind = "inject"
	// PatchRedirect replaces one call site.
	PatchRedirect PatchKind = "redirect"
	// PatchOverwrite replaces a whole method body.
	PatchOverwrite PatchKind = "overwrite"
	// PatchAddField adds a field to the target class.
	PatchAddField PatchKind = "add-field"
)

type (
	// PatchKind is the kind of a structural patch.
	PatchKind string

	// Patch is one structural modification contributed by a mixin class.
	Patch struct {
		Mixin  string
		Kind   PatchKind
		Target string
		Member string
		At     string
	}

	// PatchConfig is a parsed patch configuration set.
	PatchConfig struct {
		Resource string
		Package  string
		Mixins   []string
		Patches  []Patch
	}
)

// ParsePatchConfig parses a patch configuration document. Comments and
// trailing commas are accepted:
//
//	{
//	  "package": "net.example.mixin",
//	  "mixins": ["ServerMixin"],
//	  "patches": [
//	    {"mixin": "ServerMixin", "kind": "redirect", "target": "net.example.Server",
//	     "member": "tick()V", "at": "INVOKE net/example/World.update()V"},
//	  ],
//	}
func ParsePatchConfig(resource string, data []byte) (*PatchConfig, error) {
	doc := jsonc.ToJSON(data)
	if !gjson.ValidBytes(doc) {
		return nil, pcError(resource, "malformed JSON")
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, pcError(resource, "document must be an object")
	}

	pc := &PatchConfig{Resource: resource, Package: strings.TrimSpace(root.Get("package").String())}
	if pc.Package == "" {
		return nil, pcError(resource, `"package" is required`)
	}

	mixins := root.Get("mixins")
	if mixins.Exists() && !mixins.IsArray() {
		return nil, pcError(resource, `"mixins" must be an array`)
	}
	for _, m := range mixins.Array() {
		name := strings.TrimSpace(m.String())
		if m.Type != gjson.String || name == "" {
			return nil, pcError(resource, fmt.Sprintf("invalid mixin entry %s", m.Raw))
		}
		if slices.Contains(pc.Mixins, name) {
			return nil, pcError(resource, fmt.Sprintf("mixin %q listed twice", name))
		}
		pc.Mixins = append(pc.Mixins, name)
	}

	patches := root.Get("patches")
	if patches.Exists() && !patches.IsArray() {
		return nil, pcError(resource, `"patches" must be an array`)
	}
	for i, p := range patches.Array() {
		patch := Patch{
			Mixin:  strings.TrimSpace(p.Get("mixin").String()),
			Kind:   PatchKind(p.Get("kind").String()),
			Target: strings.TrimSpace(p.Get("target").String()),
			Member: strings.TrimSpace(p.Get("member").String()),
			At:     strings.TrimSpace(p.Get("at").String()),
		}
		if err := patch.validate(pc.Mixins); err != nil {
			return nil, pcError(resource, fmt.Sprintf("patches[%d]: %v", i, err))
		}
		pc.Patches = append(pc.Patches, patch)
	}
	return pc, nil
}

func (p Patch) validate(mixins []string) error {
	switch p.Kind {
	case PatchInject, PatchRedirect, PatchOverwrite, PatchAddField:
	default:
		return fmt.Errorf("unknown kind %q", p.Kind)
	}
	if p.Mixin == "" || p.Target == "" || p.Member == "" {
		return fmt.Errorf("mixin, target and member are required")
	}
	if !slices.Contains(mixins, p.Mixin) {
		return fmt.Errorf("mixin %q is not listed in mixins", p.Mixin)
	}
	if p.Kind == PatchRedirect && p.At == "" {
		return fmt.Errorf("redirect requires an injection point (at)")
	}
	return nil
}

func pcError(resource, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidTransform, resource, msg)
}

// MixinClass returns the fully qualified class name of mixin m.
func (pc *PatchConfig) MixinClass(m string) string {
	return pc.Package + "." + m
}

// Resolve checks that every mixin class and every patch target is on the
// classpath.
func (pc *PatchConfig) Resolve(idx *Index) error {
	for _, m := range pc.Mixins {
		if cls := pc.MixinClass(m); !idx.HasClass(cls) {
			return &UnresolvedReferenceError{Kind: RefMixin, Name: cls, Resource: pc.Resource}
		}
	}
	for _, p := range pc.Patches {
		if !idx.HasClass(p.Target) {
			return &UnresolvedReferenceError{Kind: RefClass, Name: p.Target, Resource: pc.Resource}
		}
	}
	return nil
}

// conflictKey returns the location a patch claims exclusively, or false for
// kinds that compose.
func (p Patch) conflictKey() (string, bool) {
	target := strings.ReplaceAll(p.Target, "/", ".")
	switch p.Kind {
	case PatchRedirect:
		return string(p.Kind) + "|" + target + "|" + p.Member + "|" + p.At, true
	case PatchOverwrite, PatchAddField:
		return string(p.Kind) + "|" + target + "|" + p.Member, true
	default:
		return "", false
	}
}

// DetectConflicts checks every exclusive patch of every config against all
// the others, in chain order, and returns the first clash.
func DetectConflicts(configs []*PatchConfig) error {
	claimed := make(map[string]PatchOrigin)
	for _, pc := range configs {
		for _, p := range pc.Patches {
			key, exclusive := p.conflictKey()
			if !exclusive {
				continue
			}
			origin := PatchOrigin{Resource: pc.Resource, Mixin: pc.MixinClass(p.Mixin)}
			if first, ok := claimed[key]; ok {
				return &TransformConflictError{
					Kind:   p.Kind,
					Target: p.Target,
					Member: p.Member,
					At:     p.At,
					First:  first,
					Second: origin,
				}
			}
			claimed[key] = origin
		}
	}
	return nil
}
