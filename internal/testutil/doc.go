// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that fail the test on error
// instead of returning it: environment variables (MustSetenv, MustUnsetenv),
// the home directory (SetHomeDir) and files
// (MustMkdirAll, MustWriteFile, ListDir).
//
// Fixtures for packs and fake registries live in the packtest sub-package.
package testutil
