// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

func newLaunchCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch <target> [-- args...]",
		Short: "Launch a deployment target",
		Long: `Launch a deployment target.

The target's manifest is acquired into the cache, the layered classpath is
composed, the transform chain is verified and applied, and control passes to
the main layer. Everything after the target id is forwarded to the main class
untouched, and the main layer's exit code becomes strata's exit code.`,
		Example: `  strata launch standalone
  strata launch hosted -- --world saves/alpha`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, app, args[0], forwardedArgs(args[1:]))
		},
	}
	// Flags after the target id belong to the main class.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// forwardedArgs drops the "--" separating the target id from the main
// class arguments. With interspersed flags off, pflag passes it through.
func forwardedArgs(rest []string) []string {
	if len(rest) > 0 && rest[0] == "--" {
		return rest[1:]
	}
	return rest
}

func runLaunch(cmd *cobra.Command, app *App, id string, forwarded []string) error {
	ctx := cmd.Context()

	s, err := app.loadSession(ctx)
	if err != nil {
		return app.fail(nil, err)
	}

	d, err := s.dispatcher(true)
	if err != nil {
		return app.fail(s, err)
	}

	code, err := d.Dispatch(ctx, id, forwarded)
	if err != nil {
		return app.fail(s, err)
	}
	if !code.IsSuccess() {
		return &ExitError{Code: code}
	}
	return nil
}
