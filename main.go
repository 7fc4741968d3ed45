// SPDX-License-Identifier: MPL-2.0

// Command strata resolves, acquires, composes and launches layered JVM
// deployment targets.
package main

import cmd "github.com/stratalaunch/strata/cmd/strata"

func main() {
	cmd.Execute()
}
