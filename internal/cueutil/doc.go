// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema.
//
// The flow is the same for every caller:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with a schema definition
//  3. Validate, then decode into a Go value
//
// Errors carry the file name and a JSON-style path to the offending field:
//
//	config.cue: quarantine.mods: conflicting values "yes" and bool
package cueutil
