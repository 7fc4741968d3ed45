// SPDX-License-Identifier: MPL-2.0

// Package acquire materializes the artifacts of a manifest into a local,
// content-addressed cache.
//
// Every coordinate is looked up in the cache by identity and hash; cached
// files are re-hashed on every hit. Misses are fetched from the coordinate's
// explicit source, or from the configured repositories in order, verified
// against the declared hash, and renamed into the cache under an exclusive
// per-entry lock. Independent coordinates are acquired in parallel on a
// bounded worker pool. Only transient source failures are retried.
package acquire
