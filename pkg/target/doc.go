// SPDX-License-Identifier: MPL-2.0

// Package target defines deployment targets: which of the four fixed
// classpath layers a target launches itself, which its host supplies, and the
// ordered transform chain applied before the main layer starts.
//
// Target catalogues are CUE files validated against the embedded #Targets
// schema. A built-in catalogue (vanilla, forge, fabric) is used when no file
// is configured.
package target
