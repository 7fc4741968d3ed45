// SPDX-License-Identifier: MPL-2.0

// Package manifest models the per-target library manifest and computes it at
// packaging time.
//
// A Manifest is a named set of buckets; each bucket maps to one classpath
// layer and holds a set of pinned artifact coordinates. Manifests are written
// once by Emit (see EmitForTarget for the requirements-file driven form) and
// read back, immutable, by the launcher. The on-disk format is TOML and the
// encoding is deterministic: equal inputs produce byte-identical files.
package manifest
