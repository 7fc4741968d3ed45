// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"

	"github.com/stratalaunch/strata/pkg/target"
)

type (
	// Step is one loaded and verified transform, ready to apply.
	Step struct {
		Spec target.TransformSpec
		// Location is the classpath entry the resource was read from.
		Location string
		// Exactly one of AccessWidener and PatchConfig is set.
		AccessWidener *AccessWidener
		PatchConfig   *PatchConfig
	}

	// Applier performs the actual bytecode-level work of a step.
	Applier interface {
		Apply(ctx context.Context, step Step) error
	}

	// Runner drives a transform chain through an Applier.
	Runner struct {
		applier Applier
		logger  *log.Logger
	}
)

// NewRunner returns a Runner applying steps with applier.
func NewRunner(applier Applier, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{applier: applier, logger: logger}
}

// Order returns the chain with every access-widener spec moved ahead of every
// patch-config spec. The relative order within each kind is unchanged.
func Order(chain []target.TransformSpec) []target.TransformSpec {
	ordered := make([]target.TransformSpec, 0, len(chain))
	for _, s := range chain {
		if s.Kind == target.TransformAccessWidener {
			ordered = append(ordered, s)
		}
	}
	for _, s := range chain {
		if s.Kind != target.TransformAccessWidener {
			ordered = append(ordered, s)
		}
	}
	return ordered
}

// Prepare loads, parses and verifies every step of the chain against idx
// without applying anything. Unresolved references and conflicts are
// reported here, before the first step could run.
func Prepare(chain []target.TransformSpec, idx *Index) ([]Step, error) {
	ordered := Order(chain)
	steps := make([]Step, 0, len(ordered))
	var configs []*PatchConfig

	for _, spec := range ordered {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTransform, err)
		}

		data, err := idx.ReadResource(spec.Resource)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &UnresolvedReferenceError{Kind: RefResource, Name: spec.Resource}
		}
		if err != nil {
			return nil, err
		}
		loc, _ := idx.Locate(spec.Resource)
		step := Step{Spec: spec, Location: loc}

		switch spec.Kind {
		case target.TransformAccessWidener:
			aw, err := ParseAccessWidener(spec.Resource, data)
			if err != nil {
				return nil, err
			}
			if err := aw.Resolve(idx); err != nil {
				return nil, err
			}
			step.AccessWidener = aw
		case target.TransformPatchConfig:
			pc, err := ParsePatchConfig(spec.Resource, data)
			if err != nil {
				return nil, err
			}
			if err := pc.Resolve(idx); err != nil {
				return nil, err
			}
			step.PatchConfig = pc
			configs = append(configs, pc)
		}
		steps = append(steps, step)
	}

	if err := DetectConflicts(configs); err != nil {
		return nil, err
	}
	return steps, nil
}

// Run prepares the chain and applies every step in order. Once application
// starts it runs to completion or failure: cancellation of ctx is ignored
// because a partially patched runtime is not a usable state.
func (r *Runner) Run(ctx context.Context, chain []target.TransformSpec, idx *Index) ([]Step, error) {
	steps, err := Prepare(chain, idx)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	for i, step := range steps {
		r.logger.Debug("applying transform", "step", i+1, "kind", step.Spec.Kind, "resource", step.Spec.Resource, "from", step.Location)
		if err := r.applier.Apply(ctx, step); err != nil {
			return nil, fmt.Errorf("applying %s: %w", step.Spec, err)
		}
	}
	return steps, nil
}
