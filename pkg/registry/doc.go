// SPDX-License-Identifier: MPL-2.0

// Package registry queries the remote mod registries a pack references.
//
// The package is organized into four concerns:
//   - registry.go: the Client capability, candidate model and best-file selection
//   - http.go: shared HTTP plumbing (options, rate limit detection, error mapping)
//   - modrinth.go / curseforge.go: the two registry implementations
//   - router.go: a Client that dispatches by the namespace of a RegistryID
package registry
