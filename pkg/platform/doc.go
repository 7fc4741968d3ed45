// SPDX-License-Identifier: MPL-2.0

// Package platform isolates host-specific concerns of launching: OS names,
// file names Windows refuses, and application sandboxes that cannot start
// host binaries directly.
package platform
