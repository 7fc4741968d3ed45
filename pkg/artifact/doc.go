// SPDX-License-Identifier: MPL-2.0

// Package artifact models library coordinates, their content hashes and the
// exclusion sets used to subtract host-provided libraries from a target's
// requirements.
//
// A coordinate's identity is (group, name, classifier). Version and hash are
// attributes of one pin of that identity; two pins of one identity with
// different hashes are a conflict that callers must report.
package artifact
