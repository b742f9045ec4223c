// SPDX-License-Identifier: MPL-2.0

// Package modsync turns a parsed pack into files on disk.
//
// The work happens in three stages that the caller runs in order:
//   - Resolver expands pack references through their required dependencies
//     into concrete artifacts, one generation at a time.
//   - Reconciler compares the artifacts against a managed sub-directory,
//     keeps what is already there and quarantines or deletes the rest.
//   - Scheduler downloads whatever is still pending, with bounded concurrency.
package modsync
