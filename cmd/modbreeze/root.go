// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modbreeze",
		Short: "Keep a Minecraft mod folder in sync with a modpack",
		Long: TitleStyle.Render("modbreeze") + SubtitleStyle.Render(" - Keep a Minecraft mod folder in sync with a modpack") + `

modbreeze reads a TOML pack definition, resolves every mod and its
required dependencies on Modrinth and CurseForge, and makes the mods,
resourcepacks and shaderpacks folders match: stale files are moved to
.old, missing files are downloaded in parallel.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Point modbreeze at a pack:   modbreeze source --url https://example.com/pack.toml
  2. Install it:                  modbreeze upgrade --dir ~/.minecraft
  3. Later, just run:             modbreeze upgrade

` + SubtitleStyle.Render("Examples:") + `
  modbreeze upgrade --dry-run         Show what would change
  modbreeze upgrade --side server     Install server-side mods only
  modbreeze config show               Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $HOME/.config/modbreeze/config.cue)")

	rootCmd.AddCommand(newUpgradeCommand(app))
	rootCmd.AddCommand(newSourceCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newCompletionCommand())

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// userAgent identifies modbreeze to the registries unless overridden.
func userAgent() string {
	return "modbreeze/" + Version
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))
	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// handleError prints errors that no command has rendered yet.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
