// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for strata.
//
// The App type is the composition root: it loads configuration, builds the
// target catalogue, acquirer and dispatcher, and renders failures with the
// issue catalogue before mapping them to reserved exit codes.
package cmd
