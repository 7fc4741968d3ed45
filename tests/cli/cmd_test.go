// SPDX-License-Identifier: MPL-2.0

// Package cli contains CLI integration tests using testscript.
//
// Each script in testdata runs the strata command in-process against its own
// work directory, so configuration, repositories and caches never leak
// between scripts.
package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	cmd "github.com/stratalaunch/strata/cmd/strata"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"strata": cmd.Execute,
	})
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			// Keep user-level configuration and caches out of the scripts.
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("XDG_CACHE_HOME", filepath.Join(env.WorkDir, ".cache"))
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			// expand src dst copies src to dst with $VAR references replaced
			// from the script environment, for files that need $WORK.
			"expand": func(ts *testscript.TestScript, neg bool, args []string) {
				if neg || len(args) != 2 {
					ts.Fatalf("usage: expand src dst")
				}
				data := ts.ReadFile(args[0])
				ts.Check(os.WriteFile(ts.MkAbs(args[1]), []byte(os.Expand(data, ts.Getenv)), 0o644))
			},
		},
		// Continue running all tests even if one fails
		ContinueOnError: true,
	})
}
