// SPDX-License-Identifier: MPL-2.0

// Package packtest serves a fake Modrinth registry for end-to-end tests of
// the upgrade pipeline and the CLI.
//
// It is separate from testutil so that testutil stays free of HTTP and JSON.
//
//	reg := packtest.NewModrinthRegistry(t,
//		packtest.Project{ID: "sodium", FileName: "sodium.jar", Requires: []string{"lib"}},
//		packtest.Project{ID: "lib", FileName: "lib.jar"},
//	)
//	client := registry.NewModrinthClient(registry.WithBaseURL(reg.URL()))
package packtest
