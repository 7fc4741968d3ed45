// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/fang"

	"github.com/stratalaunch/strata/pkg/types"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "dev"

		if got, want := getVersionString(), "dev (built from source)"; got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestNewRootCommandSubcommands(t *testing.T) {
	t.Parallel()

	app, err := NewApp(Dependencies{})
	if err != nil {
		t.Fatal(err)
	}
	root := NewRootCommand(app)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"launch", "plan", "fetch", "emit", "targets", "config"} {
		if !slices.Contains(names, want) {
			t.Errorf("root command lacks %q (have %v)", want, names)
		}
	}

	for _, flag := range []string{"verbose", "config", "dir"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantQuiet bool
	}{
		{"rendered exit error", &ExitError{Code: types.ExitUnknownTarget, Err: errors.New("unknown target")}, true},
		{"main layer exit status", &ExitError{Code: 7}, true},
		{"wrapped exit error", fmt.Errorf("launch: %w", &ExitError{Code: 1}), true},
		{"usage error", errors.New("accepts 1 arg(s), received 0"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			handleError(&buf, fang.Styles{}, tt.err)
			if tt.wantQuiet {
				if buf.Len() != 0 {
					t.Errorf("handleError() wrote %q, want nothing", buf.String())
				}
				return
			}
			if !strings.Contains(strings.ToLower(buf.String()), "accepts 1 arg") {
				t.Errorf("handleError() = %q, want the error text", buf.String())
			}
		})
	}
}
