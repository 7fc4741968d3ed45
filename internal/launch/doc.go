// SPDX-License-Identifier: MPL-2.0

// Package launch implements the target dispatcher: it looks up a launch target,
// acquires its manifest, composes the layered classpath, verifies and applies
// the transform chain, and hands control to the main layer on a JVM.
//
// Every failure aborts dispatch and is returned unchanged; Classify maps it to
// the process exit code.
package launch
