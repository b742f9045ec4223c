// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modbreeze/modbreeze/pkg/modsync"
	"github.com/modbreeze/modbreeze/pkg/pack"
	"github.com/modbreeze/modbreeze/pkg/registry"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// MaxConcurrency caps the number of in-flight registry queries and downloads.
	MaxConcurrency = 512
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidMinecraftDir is the sentinel error wrapped by InvalidMinecraftDirError.
	ErrInvalidMinecraftDir = errors.New("invalid minecraft directory")
	// ErrInvalidConcurrency is the sentinel error wrapped by InvalidConcurrencyError.
	ErrInvalidConcurrency = errors.New("invalid concurrency")
	// ErrInvalidRegistryConfig is the sentinel error wrapped by InvalidRegistryConfigError.
	ErrInvalidRegistryConfig = errors.New("invalid registry config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// MinecraftDir is the root of a Minecraft installation (the directory
	// holding mods/, resourcepacks/ and shaderpacks/). The zero value means
	// "not configured yet".
	MinecraftDir string

	// InvalidMinecraftDirError is returned when a MinecraftDir is whitespace-only.
	InvalidMinecraftDirError struct {
		Value MinecraftDir
	}

	// InvalidConcurrencyError is returned when Concurrency is outside 1..MaxConcurrency.
	InvalidConcurrencyError struct {
		Value int
	}

	// InvalidRegistryConfigError collects field errors of a RegistryConfig.
	InvalidRegistryConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// MinecraftDir is the installation that upgrade manages.
		MinecraftDir MinecraftDir `json:"minecraft_dir" mapstructure:"minecraft_dir"`
		// Side selects which mods are installed (client, server or all).
		Side pack.Side `json:"side" mapstructure:"side"`
		// Source is the remembered pack definition location.
		Source pack.Source `json:"source" mapstructure:"source"`
		// Concurrency bounds registry queries and downloads.
		Concurrency int `json:"concurrency" mapstructure:"concurrency"`
		// Quarantine selects, per category, whether stale files are moved to
		// .old instead of deleted.
		Quarantine modsync.QuarantinePolicy `json:"quarantine" mapstructure:"quarantine"`
		// Registry configures the remote registries.
		Registry RegistryConfig `json:"registry" mapstructure:"registry"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// RegistryConfig configures access to Modrinth and CurseForge.
	RegistryConfig struct {
		// CurseForgeAPIKey authenticates CurseForge requests. Without it
		// CurseForge references are skipped.
		CurseForgeAPIKey string `json:"curseforge_api_key" mapstructure:"curseforge_api_key"`
		// UserAgent is sent with every registry and download request.
		UserAgent string `json:"user_agent" mapstructure:"user_agent"`
		// ModrinthBaseURL overrides the Modrinth API endpoint.
		ModrinthBaseURL string `json:"modrinth_base_url" mapstructure:"modrinth_base_url"`
		// CurseForgeBaseURL overrides the CurseForge API endpoint.
		CurseForgeBaseURL string `json:"curseforge_base_url" mapstructure:"curseforge_base_url"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and full error chains
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Progress shows the download progress bar on terminals
		Progress bool `json:"progress" mapstructure:"progress"`
	}
)

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined values.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the MinecraftDir.
func (d MinecraftDir) String() string { return string(d) }

// IsSet reports whether a directory has been configured.
func (d MinecraftDir) IsSet() bool { return d != "" }

// IsValid returns whether the MinecraftDir is valid. The zero value is valid.
func (d MinecraftDir) IsValid() (bool, []error) {
	if d != "" && strings.TrimSpace(string(d)) == "" {
		return false, []error{&InvalidMinecraftDirError{Value: d}}
	}
	return true, nil
}

// Error implements the error interface for InvalidMinecraftDirError.
func (e *InvalidMinecraftDirError) Error() string {
	return fmt.Sprintf("invalid minecraft directory %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidMinecraftDir for errors.Is() compatibility.
func (e *InvalidMinecraftDirError) Unwrap() error { return ErrInvalidMinecraftDir }

// Error implements the error interface for InvalidConcurrencyError.
func (e *InvalidConcurrencyError) Error() string {
	return fmt.Sprintf("invalid concurrency %d: must be between 1 and %d", e.Value, MaxConcurrency)
}

// Unwrap returns ErrInvalidConcurrency for errors.Is() compatibility.
func (e *InvalidConcurrencyError) Unwrap() error { return ErrInvalidConcurrency }

// IsValid returns whether the base URLs, when set, are absolute http(s) URLs.
func (c RegistryConfig) IsValid() (bool, []error) {
	var errs []error
	for _, raw := range []string{c.ModrinthBaseURL, c.CurseForgeBaseURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("base url %q must be an absolute http(s) url", raw))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidRegistryConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRegistryConfigError.
func (e *InvalidRegistryConfigError) Error() string {
	return fmt.Sprintf("invalid registry config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidRegistryConfig for errors.Is() compatibility.
func (e *InvalidRegistryConfigError) Unwrap() error { return ErrInvalidRegistryConfig }

// IsValid returns whether the Config has valid fields. A zero Source is
// valid: it only has to be set by the time a pack is loaded.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.MinecraftDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	switch c.Side {
	case pack.SideClient, pack.SideServer, pack.SideAll:
	default:
		errs = append(errs, &pack.InvalidSideError{Value: c.Side})
	}
	if !c.Source.IsZero() {
		if valid, fieldErrs := c.Source.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.Concurrency < 1 || c.Concurrency > MaxConcurrency {
		errs = append(errs, &InvalidConcurrencyError{Value: c.Concurrency})
	}
	if valid, fieldErrs := c.Registry.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Side:        pack.SideClient,
		Concurrency: modsync.DefaultConcurrency,
		Quarantine:  modsync.DefaultQuarantinePolicy(),
		Registry: RegistryConfig{
			ModrinthBaseURL:   registry.DefaultModrinthBaseURL,
			CurseForgeBaseURL: registry.DefaultCurseForgeBaseURL,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Progress:    true,
		},
	}
}
