// Package config loads environment-driven settings.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Murf holds TTS credentials and tuning.
type Murf struct {
	APIKey     string `envconfig:"MURF_API_KEY"`
	Voice      string `envconfig:"MURF_VOICE" default:"en-US-ken"`
	RateLimit  int    `envconfig:"MURF_RATE_LIMIT" default:"20"`
	RateWindow string `envconfig:"MURF_RATE_WINDOW" default:"1m"`
}

// Commerce holds commercetools project credentials. When ProjectKey is
// empty the assistant runs against the in-memory demo catalog instead.
type Commerce struct {
	ProjectKey   string `envconfig:"CTP_PROJECT_KEY"`
	ClientID     string `envconfig:"CTP_CLIENT_ID"`
	ClientSecret string `envconfig:"CTP_CLIENT_SECRET"`
	AuthURL      string `envconfig:"CTP_AUTH_URL"`
	APIURL       string `envconfig:"CTP_API_URL"`
	Scopes       string `envconfig:"CTP_SCOPES"`
}

// Config is everything the assistant reads from the environment.
type Config struct {
	Murf     Murf
	Commerce Commerce
}

// ScopeList splits the configured scopes into a slice.
func (c Commerce) ScopeList() []string {
	if c.Scopes == "" {
		return nil
	}
	return strings.Fields(c.Scopes)
}

// Configured reports whether a hosted commerce project is set up.
func (c Commerce) Configured() bool {
	return c.ProjectKey != "" && c.ClientID != "" && c.ClientSecret != "" &&
		c.AuthURL != "" && c.APIURL != ""
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
