// SPDX-License-Identifier: MPL-2.0

// Package pack defines the modpack data model and the TOML pack definition parser.
//
// A Pack names a mod loader, a Minecraft version and three categories of
// references (mods, resourcepacks, shaderpacks). Each ModReference points at a
// RegistryID, a tagged union over the CurseForge (numeric) and Modrinth (string)
// namespaces. Identity of a reference is its RegistryID alone; the name is
// only used for diagnostics.
//
// The package is a leaf dependency: it imports the standard library and the
// TOML decoder only.
package pack
