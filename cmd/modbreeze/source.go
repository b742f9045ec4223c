// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// newSourceCommand creates the `modbreeze source` command.
func newSourceCommand(app *App) *cobra.Command {
	var file, rawURL string

	cmd := &cobra.Command{
		Use:   "source",
		Short: "Remember the pack definition to upgrade from",
		Long: `Remember the pack definition to upgrade from.

The source is stored in the configuration file and used by every later
'modbreeze upgrade' that does not pass --file or --url.`,
		Example: `  modbreeze source --url https://example.com/pack.toml
  modbreeze source --file ./pack.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceErrors = true
			return runSource(cmd.Context(), app, file, rawURL)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "local pack definition file")
	cmd.Flags().StringVar(&rawURL, "url", "", "pack definition URL")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	cmd.MarkFlagsOneRequired("file", "url")

	return cmd
}

func runSource(ctx context.Context, app *App, file, rawURL string) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.renderError(nil, err)
	}

	src, err := sourceFromFlags(file, rawURL)
	if err != nil {
		return app.renderError(cfg, err)
	}
	if valid, errs := src.IsValid(); !valid {
		return app.renderError(cfg, errs[0])
	}

	cfg.Source = src
	if err := app.saveConfig(cfg); err != nil {
		return app.renderError(cfg, err)
	}

	fmt.Fprintf(app.stdout, "%s Pack source set to %s\n", SuccessStyle.Render("✓"), src)
	return nil
}
