// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/modbreeze/modbreeze/internal/config"
	"github.com/modbreeze/modbreeze/internal/issue"
	"github.com/modbreeze/modbreeze/internal/progress"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// CredentialsFunc returns the registry credentials of the environment.
	CredentialsFunc func() (config.Credentials, error)

	// App wires CLI services and shared dependencies. Every command handler
	// receives the same App.
	App struct {
		Config      ConfigProvider
		Credentials CredentialsFunc
		HTTPClient  *http.Client
		stdout      io.Writer
		stderr      io.Writer

		// Global flag values, bound by the root command.
		verbose    bool
		configPath string
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		Credentials CredentialsFunc
		HTTPClient  *http.Client
		Stdout      io.Writer
		Stderr      io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Credentials == nil {
		deps.Credentials = config.LoadCredentials
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = http.DefaultClient
	}

	return &App{
		Config:      deps.Config,
		Credentials: deps.Credentials,
		HTTPClient:  deps.HTTPClient,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
}

// loadOptions honors the --config flag.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.configPath}
}

func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return a.Config.Load(ctx, a.loadOptions())
}

func (a *App) saveConfig(cfg *config.Config) error {
	if err := config.Save(cfg, a.loadOptions()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// isVerbose reports whether --verbose or ui.verbose is set.
func (a *App) isVerbose(cfg *config.Config) bool {
	return a.verbose || (cfg != nil && cfg.UI.Verbose)
}

// newLogger creates the logger shared by every pipeline stage.
func (a *App) newLogger(cfg *config.Config) *log.Logger {
	level := log.InfoLevel
	if a.isVerbose(cfg) {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: "modbreeze",
		Level:  level,
	})
}

// renderError prints err to stderr and, for known failure classes, the
// matching issue entry. It returns an ExitError for RunE to propagate.
func (a *App) renderError(cfg *config.Config, err error) error {
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.isVerbose(cfg)))

	if known := issue.IssueOf(err); known != nil {
		scheme := config.ColorSchemeAuto
		if cfg != nil {
			scheme = cfg.UI.ColorScheme
		}
		if rendered, renderErr := known.Render(glamourStyle(a.stderr, scheme)); renderErr == nil {
			fmt.Fprint(a.stderr, rendered)
		}
	}
	return &ExitError{Code: 1, Err: err}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// glamourStyle maps the configured color scheme onto a glamour style name.
func glamourStyle(w io.Writer, scheme config.ColorScheme) string {
	if !progress.IsTerminal(w) {
		return "notty"
	}
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		if lipgloss.HasDarkBackground() {
			return "dark"
		}
		return "light"
	}
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
