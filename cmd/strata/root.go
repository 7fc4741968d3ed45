// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "strata",
		Short: "A layered, transforming bootstrap launcher",
		Long: TitleStyle.Render("strata") + SubtitleStyle.Render(" - A layered, transforming bootstrap launcher") + `

strata resolves the library manifest of a deployment target, acquires
every artifact into a content-addressed cache, composes the layered
classpath, verifies the target's transform chain and hands control to
the main layer.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Describe required libraries in a requirements.cue file
  2. Emit manifests with: strata emit --requirements requirements.cue
  3. Launch a target with: strata launch <target> -- <args>

` + SubtitleStyle.Render("Examples:") + `
  strata targets               List known deployment targets
  strata fetch standalone      Populate the cache for a target
  strata plan hosted -f json   Show the resolved launch plan
  strata config show           Show current configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/strata/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&app.flags.baseDir, "dir", "C", "", "base directory for relative paths (default is the working directory)")

	rootCmd.AddCommand(newLaunchCommand(app))
	rootCmd.AddCommand(newPlanCommand(app))
	rootCmd.AddCommand(newFetchCommand(app))
	rootCmd.AddCommand(newEmitCommand(app))
	rootCmd.AddCommand(newTargetsCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// errorWriter hides the terminal from fang so every error reaches
// handleError, including when stderr is redirected.
type errorWriter struct{ io.Writer }

// handleError prints errors cobra and fang produce. An *ExitError was
// already rendered with its issue entry, or is a plain main-layer exit status.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the root command.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	rootCmd := NewRootCommand(app)
	rootCmd.SetErr(errorWriter{os.Stderr})

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}
