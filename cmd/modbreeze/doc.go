// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for modbreeze.
//
// The root command wires an App (configuration provider, credentials, HTTP
// client and output streams) into the upgrade, source, config and completion
// subcommands. Business logic lives in internal/app/upgrade; this package only
// maps flags onto requests and renders results and errors.
package cmd
