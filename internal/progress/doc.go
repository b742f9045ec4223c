// SPDX-License-Identifier: MPL-2.0

// Package progress tracks aggregate download progress and renders it as a
// terminal progress bar.
//
// Tracker is a lock-free byte counter; Bar wraps a Tracker and redraws a
// single line on a ticker while downloads run. Both satisfy
// modsync.ProgressReporter.
package progress
