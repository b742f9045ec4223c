// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modbreeze/modbreeze/internal/config"
	"github.com/modbreeze/modbreeze/pkg/pack"
)

// configKeys lists the keys accepted by `config set`, in display order.
var configKeys = []string{
	"minecraft_dir",
	"side",
	"concurrency",
	"source.path",
	"source.url",
	"quarantine.mods",
	"quarantine.resourcepacks",
	"quarantine.shaderpacks",
	"registry.curseforge_api_key",
	"registry.user_agent",
	"registry.modrinth_base_url",
	"registry.curseforge_base_url",
	"ui.color_scheme",
	"ui.verbose",
	"ui.progress",
}

// newConfigCommand creates the `modbreeze config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modbreeze configuration",
		Long: `Manage modbreeze configuration.

Configuration is stored in:
  - Linux: ~/.config/modbreeze/config.cue
  - macOS: ~/Library/Application Support/modbreeze/config.cue
  - Windows: %APPDATA%\modbreeze\config.cue

MODBREEZE_CURSEFORGE_API_KEY and MODBREEZE_USER_AGENT override the
registry settings of the file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceErrors = true
			return showConfig(cmd.Context(), app)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(app, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, err := config.FilePath(app.loadOptions())
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, cfgPath)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Long:      "Set a configuration value.\n\nValid keys: " + strings.Join(configKeys, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.renderError(nil, err)
	}
	creds, err := app.Credentials()
	if err != nil {
		return app.renderError(cfg, err)
	}
	effective := cfg.WithCredentials(creds)

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	unset := SubtitleStyle.Render("(not set)")
	value := func(v string) string {
		if v == "" {
			return unset
		}
		return valueStyle.Render(v)
	}

	out := app.stdout
	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	cfgPath, err := config.FilePath(app.loadOptions())
	switch {
	case err != nil:
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	case fileExistsCheck(cfgPath):
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	default:
		fmt.Fprintf(out, "%s: %s %s\n", keyStyle.Render("Config file"), cfgPath, SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("minecraft_dir"), value(effective.MinecraftDir.String()))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("side"), value(effective.Side.String()))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("source"), value(effective.Source.String()))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("concurrency"), value(strconv.Itoa(effective.Concurrency)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("quarantine"))
	fmt.Fprintf(out, "  mods: %s\n", value(strconv.FormatBool(effective.Quarantine.Mods)))
	fmt.Fprintf(out, "  resourcepacks: %s\n", value(strconv.FormatBool(effective.Quarantine.Resourcepacks)))
	fmt.Fprintf(out, "  shaderpacks: %s\n", value(strconv.FormatBool(effective.Quarantine.Shaderpacks)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("registry"))
	fmt.Fprintf(out, "  curseforge_api_key: %s\n", value(maskSecret(effective.Registry.CurseForgeAPIKey)))
	fmt.Fprintf(out, "  user_agent: %s\n", value(effective.Registry.UserAgent))
	fmt.Fprintf(out, "  modrinth_base_url: %s\n", value(effective.Registry.ModrinthBaseURL))
	fmt.Fprintf(out, "  curseforge_base_url: %s\n", value(effective.Registry.CurseForgeBaseURL))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", value(effective.UI.ColorScheme.String()))
	fmt.Fprintf(out, "  verbose: %s\n", value(strconv.FormatBool(effective.UI.Verbose)))
	fmt.Fprintf(out, "  progress: %s\n", value(strconv.FormatBool(effective.UI.Progress)))

	return nil
}

func initConfig(app *App, force bool) error {
	cfgPath, err := config.CreateDefaultConfig(app.loadOptions(), force)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Configuration file at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.renderError(nil, err)
	}

	if err := applyConfigValue(cfg, key, value); err != nil {
		return app.renderError(cfg, err)
	}
	if valid, errs := cfg.IsValid(); !valid {
		return app.renderError(cfg, errs[0])
	}
	if err := app.saveConfig(cfg); err != nil {
		return app.renderError(cfg, err)
	}

	shown := value
	if key == "registry.curseforge_api_key" {
		shown = maskSecret(value)
	}
	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, shown)
	return nil
}

// applyConfigValue sets one key of cfg from its string form.
func applyConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "minecraft_dir":
		cfg.MinecraftDir = config.MinecraftDir(value)
	case "side":
		side, err := pack.ParseSide(value)
		if err != nil {
			return err
		}
		cfg.Side = side
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid concurrency %q: %w", value, err)
		}
		cfg.Concurrency = n
	case "source.path":
		cfg.Source = pack.Source{Path: value}
	case "source.url":
		cfg.Source = pack.Source{URL: value}
	case "quarantine.mods":
		return setBool(&cfg.Quarantine.Mods, key, value)
	case "quarantine.resourcepacks":
		return setBool(&cfg.Quarantine.Resourcepacks, key, value)
	case "quarantine.shaderpacks":
		return setBool(&cfg.Quarantine.Shaderpacks, key, value)
	case "registry.curseforge_api_key":
		cfg.Registry.CurseForgeAPIKey = value
	case "registry.user_agent":
		cfg.Registry.UserAgent = value
	case "registry.modrinth_base_url":
		cfg.Registry.ModrinthBaseURL = value
	case "registry.curseforge_base_url":
		cfg.Registry.CurseForgeBaseURL = value
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	case "ui.verbose":
		return setBool(&cfg.UI.Verbose, key, value)
	case "ui.progress":
		return setBool(&cfg.UI.Progress, key, value)
	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(configKeys, ", "))
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: must be true or false", key, value)
	}
	*dst = b
	return nil
}

// maskSecret keeps the last four characters of a credential.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}
