// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratalaunch/strata/internal/issue"
	"github.com/stratalaunch/strata/pkg/manifest"
)

type emitFlags struct {
	requirements string
	outDir       string
	targets      []string
}

func newEmitCommand(app *App) *cobra.Command {
	var flags emitFlags

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Emit per-target library manifests from a requirements file",
		Long: `Emit one library manifest per deployment target.

Each target's manifest keeps every required bucket, drops libraries the
platform or that target's host already provides, and is written as
<manifest_dir>/<target>.toml. Conflicting placements of one library abort
emission without writing anything.`,
		Example: `  strata emit --requirements requirements.cue
  strata emit --target hosted --out build/manifests`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEmit(cmd, app, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.requirements, "requirements", "r", "", "requirements file (default is requirements_file from config)")
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", "", "manifest output directory (default is manifest_dir from config)")
	cmd.Flags().StringSliceVarP(&flags.targets, "target", "t", nil, "emit only these targets (repeatable; default is every known target)")

	return cmd
}

func runEmit(cmd *cobra.Command, app *App, flags emitFlags) error {
	s, err := app.loadSession(cmd.Context())
	if err != nil {
		return app.fail(nil, err)
	}

	reqPath := flags.requirements
	if reqPath == "" {
		reqPath = s.cfg.RequirementsFile
	}
	if reqPath == "" {
		return app.fail(s, issue.NewErrorContext().
			WithOperation("emit manifests").
			WithSuggestions(
				"Pass --requirements <file>",
				"Or set requirements_file in your configuration",
			).
			Wrap(errors.New("no requirements file given")).
			BuildError())
	}
	reqPath = s.cfg.ResolvePath(reqPath)

	req, err := manifest.LoadRequirements(reqPath)
	if err != nil {
		return app.fail(s, issue.NewErrorContext().
			WithOperation("load requirements").
			WithResource(reqPath).
			Wrap(err).
			BuildError())
	}

	outDir := s.manifestDir()
	if flags.outDir != "" {
		outDir = s.cfg.ResolvePath(flags.outDir)
	}

	ids := flags.targets
	if len(ids) == 0 {
		ids = s.catalogue.IDs()
	}

	// Emit everything before writing anything.
	emitted := make([]*manifest.Manifest, 0, len(ids))
	for _, id := range ids {
		desc, err := s.catalogue.Lookup(id)
		if err != nil {
			return app.fail(s, err)
		}
		m, err := manifest.EmitForTarget(req, desc)
		if err != nil {
			return app.fail(s, err)
		}
		emitted = append(emitted, m)
	}

	out := cmd.OutOrStdout()
	for _, m := range emitted {
		path := manifest.Path(outDir, m.Name)
		if err := manifest.Save(path, m); err != nil {
			return app.fail(s, issue.WrapWithContext(err, "write manifest", path))
		}
		s.logger.Debug("manifest written", "target", m.Name, "path", path, "artifacts", len(m.Coordinates()))
		fmt.Fprintf(out, "%s %s %s\n",
			SuccessStyle.Render("✓"),
			CmdStyle.Render(m.Name),
			SubtitleStyle.Render(fmt.Sprintf("%d buckets, %d artifacts → %s", len(m.Buckets), len(m.Coordinates()), path)))
	}
	return nil
}
