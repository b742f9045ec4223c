// SPDX-License-Identifier: MPL-2.0

package config

import (
	"testing"

	"github.com/caarlos0/env/v11"
)

func TestParseCredentials(t *testing.T) {
	t.Parallel()

	creds, err := parseCredentials(env.Options{Environment: map[string]string{
		"MODBREEZE_CURSEFORGE_API_KEY": "cf-key",
		"MODBREEZE_USER_AGENT":         "pack/2.0",
	}})
	if err != nil {
		t.Fatalf("parseCredentials() error = %v", err)
	}
	if creds.CurseForgeAPIKey != "cf-key" || creds.UserAgent != "pack/2.0" {
		t.Errorf("creds = %+v", creds)
	}

	empty, err := parseCredentials(env.Options{Environment: map[string]string{}})
	if err != nil || empty != (Credentials{}) {
		t.Errorf("empty environment gave %+v, %v", empty, err)
	}
}

func TestConfig_WithCredentials(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Registry.CurseForgeAPIKey = "from-file"
	cfg.Registry.UserAgent = "file/1.0"

	merged := cfg.WithCredentials(Credentials{CurseForgeAPIKey: "from-env"})
	if merged.Registry.CurseForgeAPIKey != "from-env" {
		t.Errorf("env key should win, got %q", merged.Registry.CurseForgeAPIKey)
	}
	if merged.Registry.UserAgent != "file/1.0" {
		t.Errorf("empty env values must not clear file values, got %q", merged.Registry.UserAgent)
	}
	if cfg.Registry.CurseForgeAPIKey != "from-file" {
		t.Error("WithCredentials must not mutate the receiver")
	}
}
