// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Credentials are registry settings read from the environment. They take
// precedence over the config file and are never written back to it.
type Credentials struct {
	CurseForgeAPIKey string `env:"MODBREEZE_CURSEFORGE_API_KEY"`
	UserAgent        string `env:"MODBREEZE_USER_AGENT"`
}

// LoadCredentials reads Credentials from the process environment.
func LoadCredentials() (Credentials, error) {
	return parseCredentials(env.Options{})
}

// parseCredentials is LoadCredentials over an explicit environment when
// opts.Environment is set.
func parseCredentials(opts env.Options) (Credentials, error) {
	var creds Credentials
	if err := env.ParseWithOptions(&creds, opts); err != nil {
		return Credentials{}, fmt.Errorf("parse env: %w", err)
	}
	return creds, nil
}

// WithCredentials returns a copy of c where non-empty credentials replace
// the file values.
func (c Config) WithCredentials(creds Credentials) Config {
	if creds.CurseForgeAPIKey != "" {
		c.Registry.CurseForgeAPIKey = creds.CurseForgeAPIKey
	}
	if creds.UserAgent != "" {
		c.Registry.UserAgent = creds.UserAgent
	}
	return c
}
