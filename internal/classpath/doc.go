// SPDX-License-Identifier: MPL-2.0

// Package classpath composes the runtime classpath of a target from acquired
// artifacts and local layer outputs.
//
// The four layers always appear in their fixed order (bootstrap,
// launch-support, patch-definitions, main). Layers supplied by the target's
// host are omitted; every other layer must contribute at least one entry.
package classpath
