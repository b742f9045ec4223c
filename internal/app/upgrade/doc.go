// SPDX-License-Identifier: MPL-2.0

// Package upgrade runs the modbreeze pipeline for one Minecraft directory:
// load and parse the pack definition, resolve it against the registries,
// reconcile each managed sub-directory, then download what is missing.
//
// It owns the user-facing error context (issue.ActionableError) so the CLI
// layer only has to render errors.
package upgrade
