// SPDX-License-Identifier: MPL-2.0

// Package config handles modbreeze configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/modbreeze/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/modbreeze/config.cue on macOS,
// %APPDATA%\modbreeze\config.cue on Windows). It remembers the Minecraft directory, the
// side, the pack source, the concurrency bound, the quarantine policy and the registry
// endpoints. Files are validated against the embedded config_schema.cue before being
// merged over the defaults.
//
// Registry credentials may also come from MODBREEZE_CURSEFORGE_API_KEY and
// MODBREEZE_USER_AGENT (see Credentials); those are applied on top of the loaded file.
package config
