// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/modbreeze/modbreeze/internal/config"
	"github.com/modbreeze/modbreeze/internal/testutil"
	"github.com/modbreeze/modbreeze/internal/testutil/packtest"
)

const samplePack = `name = "Sample"
version = "2.1"
loader = "fabric"
mc_version = "1.20.1"

[mods.client]
sodium = "sodium"

[mods.server]
lithium = "lithium"
`

// testEnv runs commands against an isolated config file and captured output.
type testEnv struct {
	app     *App
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	cfgPath string
}

func newTestEnv(t *testing.T, reg *packtest.Registry, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.cue")
	cfg := config.DefaultConfig()
	cfg.UI.Progress = false
	if reg != nil {
		cfg.Registry.ModrinthBaseURL = reg.URL()
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := config.Save(cfg, config.LoadOptions{ConfigFilePath: cfgPath}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	env := &testEnv{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, cfgPath: cfgPath}
	deps := Dependencies{
		Credentials: func() (config.Credentials, error) { return config.Credentials{}, nil },
		Stdout:      env.stdout,
		Stderr:      env.stderr,
	}
	if reg != nil {
		deps.HTTPClient = reg.Client()
	}
	env.app = NewApp(deps)
	return env
}

func (e *testEnv) run(args ...string) error {
	e.stdout.Reset()
	e.stderr.Reset()
	root := NewRootCommand(e.app)
	root.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)
	return root.ExecuteContext(context.Background())
}

func (e *testEnv) config(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.NewProvider().Load(context.Background(), config.LoadOptions{ConfigFilePath: e.cfgPath})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func newSampleRegistry(t *testing.T) *packtest.Registry {
	t.Helper()
	return packtest.NewModrinthRegistry(t,
		packtest.Project{ID: "sodium", FileName: "sodium-0.5.jar", Requires: []string{"fabric-api"}},
		packtest.Project{ID: "fabric-api", FileName: "fabric-api-0.90.jar"},
		packtest.Project{ID: "lithium", FileName: "lithium-0.11.jar"},
	)
}

func writeSamplePack(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pack.toml")
	testutil.MustWriteFile(t, p, samplePack)
	return p
}
