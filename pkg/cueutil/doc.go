// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against embedded schemas.
//
// Target catalogues, packaging requirements and the launcher configuration are
// all CUE files. Each is read the same way:
//
//  1. Compile the embedded schema
//  2. Compile the document and unify it with the schema definition
//  3. Validate and decode into a Go struct
//
// # Usage
//
//	//go:embed targets_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseFile[catalogueFile](schema, "targets.cue", "#Targets")
//	if err != nil {
//	    return nil, err // error carries the CUE path of the offending field
//	}
//	return result.Value, nil
package cueutil
