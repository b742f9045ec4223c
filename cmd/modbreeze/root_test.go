// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/modbreeze/modbreeze/internal/config"
	"github.com/modbreeze/modbreeze/internal/issue"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2025-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2025-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
		if userAgent() != "modbreeze/v1.2.3" {
			t.Errorf("userAgent() = %q", userAgent())
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand(NewApp(Dependencies{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}))
	for _, name := range []string{"upgrade", "source", "config", "completion"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("verbose") == nil || root.PersistentFlags().Lookup("config") == nil {
		t.Error("global flags --verbose and --config must be registered")
	}
}

func TestCompletion(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	if err := env.run("completion", "bash"); err != nil {
		t.Fatalf("completion error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "modbreeze") {
		t.Error("bash completion should mention the command name")
	}
	if err := env.run("completion", "tcsh"); err == nil {
		t.Error("unsupported shells should be rejected")
	}
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	plain := errors.New("plain failure")
	if got := formatErrorForDisplay(plain, false); got != "plain failure" {
		t.Errorf("formatErrorForDisplay(plain) = %q", got)
	}

	ae := issue.NewErrorContext().
		WithOperation("download mods").
		WithSuggestion("Run the command again").
		Wrap(fmt.Errorf("disk: %w", fs.ErrPermission)).
		BuildError()
	if got := formatErrorForDisplay(ae, false); !strings.Contains(got, "Run the command again") {
		t.Errorf("suggestions missing:\n%s", got)
	}
	if got := formatErrorForDisplay(ae, true); !strings.Contains(got, "Error chain") {
		t.Errorf("verbose output should include the chain:\n%s", got)
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	stderr := &bytes.Buffer{}
	app := NewApp(Dependencies{Stdout: &bytes.Buffer{}, Stderr: stderr})

	err := issue.NewErrorContext().
		WithOperation("parse pack definition").
		WithIssue(issue.InvalidLoaderId).
		Wrap(errors.New("unknown loader")).
		BuildError()
	got := app.renderError(nil, err)

	var exitErr *ExitError
	if !errors.As(got, &exitErr) || exitErr.Code != 1 || !errors.Is(got, err) {
		t.Fatalf("renderError() = %v, want ExitError wrapping the cause", got)
	}
	out := stderr.String()
	if !strings.Contains(out, "failed to parse pack definition") || !strings.Contains(out, "Unknown mod loader") {
		t.Errorf("stderr:\n%s", out)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{Stderr: &bytes.Buffer{}})
	if lvl := app.newLogger(config.DefaultConfig()).GetLevel(); lvl != log.InfoLevel {
		t.Errorf("default level = %v, want info", lvl)
	}

	verboseCfg := config.DefaultConfig()
	verboseCfg.UI.Verbose = true
	if lvl := app.newLogger(verboseCfg).GetLevel(); lvl != log.DebugLevel {
		t.Errorf("ui.verbose level = %v, want debug", lvl)
	}

	app.verbose = true
	if lvl := app.newLogger(nil).GetLevel(); lvl != log.DebugLevel {
		t.Errorf("--verbose level = %v, want debug", lvl)
	}
}

func TestGlamourStyle_NonTerminal(t *testing.T) {
	t.Parallel()

	if got := glamourStyle(&bytes.Buffer{}, config.ColorSchemeDark); got != "notty" {
		t.Errorf("glamourStyle() = %q, want notty", got)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 3}).Error(); got != "exit status 3" {
		t.Errorf("Error() = %q", got)
	}
	cause := errors.New("boom")
	e := &ExitError{Code: 1, Err: cause}
	if e.Error() != "boom" || !errors.Is(e, cause) {
		t.Errorf("ExitError should report and unwrap its cause")
	}
}
