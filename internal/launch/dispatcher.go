// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"

	"github.com/stratalaunch/strata/internal/acquire"
	"github.com/stratalaunch/strata/internal/classpath"
	"github.com/stratalaunch/strata/internal/transform"
	"github.com/stratalaunch/strata/pkg/manifest"
	"github.com/stratalaunch/strata/pkg/target"
	"github.com/stratalaunch/strata/pkg/types"
)

// ErrManifestNotFound is the sentinel error wrapped by ManifestNotFoundError.
var ErrManifestNotFound = errors.New("manifest not found")

type (
	// Acquirer materializes a manifest. *acquire.Acquirer satisfies it.
	Acquirer interface {
		Acquire(ctx context.Context, m *manifest.Manifest) (*acquire.Result, error)
	}

	// Options wires a Dispatcher.
	Options struct {
		Catalogue *target.Catalogue
		// ManifestDir holds <target>.toml manifests.
		ManifestDir string
		// BaseDir anchors LocalLayers globs.
		BaseDir string
		// LocalLayers are doublestar globs per layer name.
		LocalLayers map[string][]string
		Acquirer    Acquirer
		Launcher    Launcher
		// MainClass is used when the target descriptor names none.
		MainClass string
		Logger    *log.Logger
	}

	// Dispatcher drives acquire, compose, transform and handoff for one target.
	Dispatcher struct {
		opts Options
	}

	// Plan is a fully resolved launch that has not been started.
	Plan struct {
		Target    *target.Descriptor
		Manifest  *manifest.Manifest
		Acquired  *acquire.Result
		Classpath *classpath.Classpath
		// Steps is the verified transform chain in application order.
		Steps     []transform.Step
		MainClass string
	}

	// ManifestNotFoundError is returned when a target has no emitted manifest.
	ManifestNotFoundError struct {
		Target string
		Path   string
	}

	// resolved is a plan up to composition, before the chain is verified.
	resolved struct {
		plan  *Plan
		index *transform.Index
	}
)

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("no manifest for target %q at %s", e.Target, e.Path)
}

// Unwrap returns ErrManifestNotFound for errors.Is() compatibility.
func (e *ManifestNotFoundError) Unwrap() error { return ErrManifestNotFound }

// NewDispatcher validates opts. Launcher may be nil for Plan-only use.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if opts.Catalogue == nil {
		return nil, errors.New("dispatcher requires a target catalogue")
	}
	if opts.Acquirer == nil {
		return nil, errors.New("dispatcher requires an acquirer")
	}
	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Dispatcher{opts: opts}, nil
}

// Plan resolves id into a launch plan: the manifest is acquired, the classpath
// composed and the transform chain verified, but nothing is applied or run.
func (d *Dispatcher) Plan(ctx context.Context, id string) (*Plan, error) {
	r, err := d.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	steps, err := transform.Prepare(r.plan.Target.Transforms, r.index)
	if err != nil {
		return nil, err
	}
	r.plan.Steps = steps
	return r.plan, nil
}

// Dispatch launches target id with args forwarded to its main class and
// returns the main layer's exit code. Any failure before handoff aborts with
// the error unchanged; the caller maps it with Classify.
func (d *Dispatcher) Dispatch(ctx context.Context, id string, args []string) (types.ExitCode, error) {
	if d.opts.Launcher == nil {
		return types.ExitFailure, errors.New("dispatcher has no launcher")
	}

	r, err := d.resolve(ctx, id)
	if err != nil {
		return Classify(err), err
	}

	applier := &transform.PropertyApplier{}
	steps, err := transform.NewRunner(applier, d.opts.Logger).Run(ctx, r.plan.Target.Transforms, r.index)
	if err != nil {
		return Classify(err), err
	}
	r.plan.Steps = steps

	d.opts.Logger.Info("launching", "target", id, "main", r.plan.MainClass, "entries", len(r.plan.Classpath.Entries), "transforms", len(steps))
	return d.opts.Launcher.Launch(ctx, Handoff{
		Target:           id,
		Classpath:        r.plan.Classpath,
		MainClass:        r.plan.MainClass,
		SystemProperties: applier.SystemProperties(),
		Args:             args,
	})
}

func (d *Dispatcher) resolve(ctx context.Context, id string) (*resolved, error) {
	logger := d.opts.Logger.With("target", id)

	desc, err := d.opts.Catalogue.Lookup(id)
	if err != nil {
		return nil, err
	}

	mainClass := desc.MainClass
	if mainClass == "" {
		mainClass = d.opts.MainClass
	}
	if mainClass == "" {
		return nil, fmt.Errorf("%w: target %q has no main class; set main_class on the target or java.main_class in config", target.ErrInvalidDescriptor, id)
	}

	m, err := LoadManifest(d.opts.ManifestDir, id)
	if err != nil {
		return nil, err
	}

	acquired, err := d.opts.Acquirer.Acquire(ctx, m)
	if err != nil {
		return nil, err
	}
	logger.Debug("acquired", "hits", acquired.Hits, "fetched", acquired.Fetched)

	local, err := classpath.ResolveLocal(d.opts.BaseDir, d.opts.LocalLayers)
	if err != nil {
		return nil, err
	}

	cp, err := classpath.Compose(desc, acquired.Classpath, local)
	if err != nil {
		return nil, err
	}
	logger.Debug("composed classpath", "layers", cp.Layers(), "entries", len(cp.Entries))

	idx, err := transform.NewIndex(cp)
	if err != nil {
		return nil, fmt.Errorf("indexing classpath: %w", err)
	}

	return &resolved{
		plan: &Plan{
			Target:    desc,
			Manifest:  m,
			Acquired:  acquired,
			Classpath: cp,
			MainClass: mainClass,
		},
		index: idx,
	}, nil
}

// LoadManifest reads the emitted manifest of target id from dir. A missing
// file is a *ManifestNotFoundError; a manifest emitted for another target is
// rejected as invalid.
func LoadManifest(dir, id string) (*manifest.Manifest, error) {
	path := manifest.Path(dir, id)
	m, err := manifest.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &ManifestNotFoundError{Target: id, Path: path}
	}
	if err != nil {
		return nil, err
	}
	if m.Name != id {
		return nil, fmt.Errorf("%s: %w: manifest is for target %q", path, manifest.ErrInvalidManifest, m.Name)
	}
	return m, nil
}
