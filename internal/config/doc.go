// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/strata/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/strata/config.cue on macOS, %APPDATA%\strata\config.cue
// on Windows), falling back to ./strata.cue. Values may be overridden with STRATA_*
// environment variables (STRATA_CACHE_DIR, STRATA_ACQUIRE_TIMEOUT, ...).
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
