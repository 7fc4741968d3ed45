// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratalaunch/strata/internal/launch"
)

func newFetchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <target>...",
		Short: "Acquire the libraries of one or more targets into the cache",
		Long: `Acquire every artifact listed in the targets' manifests.

Cached artifacts are re-verified against their content hash; missing ones are
downloaded from their explicit source or the configured repositories. Nothing
is launched.`,
		Example: `  strata fetch standalone
  strata fetch standalone hosted`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, app, args)
		},
	}
}

func runFetch(cmd *cobra.Command, app *App, ids []string) error {
	ctx := cmd.Context()

	s, err := app.loadSession(ctx)
	if err != nil {
		return app.fail(nil, err)
	}

	acq, err := s.acquirer()
	if err != nil {
		return app.fail(s, err)
	}

	out := cmd.OutOrStdout()
	for _, id := range ids {
		if _, err := s.catalogue.Lookup(id); err != nil {
			return app.fail(s, err)
		}

		m, err := launch.LoadManifest(s.manifestDir(), id)
		if err != nil {
			return app.fail(s, err)
		}

		res, err := acq.Acquire(ctx, m)
		if err != nil {
			return app.fail(s, err)
		}
		fmt.Fprintf(out, "%s %s %s\n",
			SuccessStyle.Render("✓"),
			CmdStyle.Render(id),
			SubtitleStyle.Render(fmt.Sprintf("(%d cached, %d fetched)", res.Hits, res.Fetched)))
	}
	return nil
}
