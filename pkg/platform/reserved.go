// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

// reservedNames are device names Windows refuses as a file's base name.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsReservedFileName reports whether name cannot be used as a file name on
// Windows. Case is ignored, and so is everything from the first dot on:
// "con.toml" and "nul.tar.gz" are both refused.
func IsReservedFileName(name string) bool {
	base, _, _ := strings.Cut(name, ".")
	return reservedNames[strings.ToUpper(base)]
}
