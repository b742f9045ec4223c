// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/modbreeze/modbreeze/internal/cueutil"
	"github.com/modbreeze/modbreeze/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "modbreeze"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the modbreeze configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the config file that Load and Save use for opts.
func FilePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading. It returns the
// loaded configuration and the file it came from ("" when only defaults apply).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	cfgPath, err := FilePath(opts)
	if err != nil {
		return nil, "", err
	}

	resolvedPath := ""
	switch {
	case fileExists(cfgPath):
		resolvedPath = cfgPath
	case opts.ConfigFilePath != "":
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Use 'modbreeze config init --config <path>' to create it").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
			BuildError()
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'modbreeze config --help' for configuration options").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Fix the listed fields or run 'modbreeze config init --force'").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// setDefaults registers every leaf of defaults with v so that partial files
// only override what they mention.
func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("minecraft_dir", string(defaults.MinecraftDir))
	v.SetDefault("side", string(defaults.Side))
	v.SetDefault("source.path", defaults.Source.Path)
	v.SetDefault("source.url", defaults.Source.URL)
	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetDefault("quarantine.mods", defaults.Quarantine.Mods)
	v.SetDefault("quarantine.resourcepacks", defaults.Quarantine.Resourcepacks)
	v.SetDefault("quarantine.shaderpacks", defaults.Quarantine.Shaderpacks)
	v.SetDefault("registry.curseforge_api_key", defaults.Registry.CurseForgeAPIKey)
	v.SetDefault("registry.user_agent", defaults.Registry.UserAgent)
	v.SetDefault("registry.modrinth_base_url", defaults.Registry.ModrinthBaseURL)
	v.SetDefault("registry.curseforge_base_url", defaults.Registry.CurseForgeBaseURL)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.progress", defaults.UI.Progress)
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges its
// contents into v. Concrete(false) keeps omitted optional fields unset so
// the viper defaults show through.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, "#Config",
		cueutil.WithConcrete(false),
		cueutil.WithFilename(path),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file at the location selected
// by opts. An existing file is left untouched unless force is set.
func CreateDefaultConfig(opts LoadOptions, force bool) (string, error) {
	cfgPath, err := FilePath(opts)
	if err != nil {
		return "", err
	}

	if !force && fileExists(cfgPath) {
		return cfgPath, nil
	}

	return cfgPath, writeCUE(cfgPath, DefaultConfig())
}

// Save writes cfg to the location selected by opts.
func Save(cfg *Config, opts LoadOptions) error {
	cfgPath, err := FilePath(opts)
	if err != nil {
		return err
	}
	return writeCUE(cfgPath, cfg)
}

func writeCUE(cfgPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file may hold an API key.
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// modbreeze configuration file\n")
	sb.WriteString("// See https://github.com/modbreeze/modbreeze for documentation.\n\n")

	if cfg.MinecraftDir.IsSet() {
		fmt.Fprintf(&sb, "minecraft_dir: %q\n", cfg.MinecraftDir)
	}
	fmt.Fprintf(&sb, "side: %q\n", cfg.Side)
	fmt.Fprintf(&sb, "concurrency: %d\n", cfg.Concurrency)

	switch {
	case cfg.Source.URL != "":
		fmt.Fprintf(&sb, "\nsource: url: %q\n", cfg.Source.URL)
	case cfg.Source.Path != "":
		fmt.Fprintf(&sb, "\nsource: path: %q\n", cfg.Source.Path)
	}

	sb.WriteString("\nquarantine: {\n")
	fmt.Fprintf(&sb, "\tmods: %v\n", cfg.Quarantine.Mods)
	fmt.Fprintf(&sb, "\tresourcepacks: %v\n", cfg.Quarantine.Resourcepacks)
	fmt.Fprintf(&sb, "\tshaderpacks: %v\n", cfg.Quarantine.Shaderpacks)
	sb.WriteString("}\n")

	sb.WriteString("\nregistry: {\n")
	if cfg.Registry.CurseForgeAPIKey != "" {
		fmt.Fprintf(&sb, "\tcurseforge_api_key: %q\n", cfg.Registry.CurseForgeAPIKey)
	}
	if cfg.Registry.UserAgent != "" {
		fmt.Fprintf(&sb, "\tuser_agent: %q\n", cfg.Registry.UserAgent)
	}
	if cfg.Registry.ModrinthBaseURL != "" {
		fmt.Fprintf(&sb, "\tmodrinth_base_url: %q\n", cfg.Registry.ModrinthBaseURL)
	}
	if cfg.Registry.CurseForgeBaseURL != "" {
		fmt.Fprintf(&sb, "\tcurseforge_base_url: %q\n", cfg.Registry.CurseForgeBaseURL)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tprogress: %v\n", cfg.UI.Progress)
	sb.WriteString("}\n")

	return sb.String()
}
