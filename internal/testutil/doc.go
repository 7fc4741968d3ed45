// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on error instead
// of returning it: file trees, in-memory jars and file:// repositories laid
// out the way the acquirer reads them.
package testutil
