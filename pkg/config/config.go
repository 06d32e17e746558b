// Package config binds the server's environment configuration. Every value
// comes from flags or OCTOBRIDGE_-prefixed environment variables via viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
type Config struct {
	// OAuth application credentials.
	ClientID     string
	ClientSecret string

	// RedirectURI is the callback URL registered with the OAuth app.
	RedirectURI string

	// ClientOrigin is where callback redirects land, success or failure.
	ClientOrigin string

	// Host is empty for github.com, or a GitHub Enterprise Server URL.
	Host string

	// ListenAddress is the HTTP bind address, e.g. ":8080".
	ListenAddress string

	// Token is the personal access token used by the stdio surface.
	Token string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads the configuration out of the given viper instance.
func Load(v *viper.Viper) *Config {
	return &Config{
		ClientID:      v.GetString("client-id"),
		ClientSecret:  v.GetString("client-secret"),
		RedirectURI:   v.GetString("redirect-uri"),
		ClientOrigin:  v.GetString("client-origin"),
		Host:          v.GetString("host"),
		ListenAddress: v.GetString("listen-address"),
		Token:         v.GetString("token"),
		LogLevel:      v.GetString("log-level"),
	}
}

// ValidateHTTP checks the fields the HTTP surface needs.
func (c *Config) ValidateHTTP() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client-id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client-secret")
	}
	if c.RedirectURI == "" {
		missing = append(missing, "redirect-uri")
	}
	if c.ClientOrigin == "" {
		missing = append(missing, "client-origin")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateStdio checks the fields the stdio surface needs.
func (c *Config) ValidateStdio() error {
	if c.Token == "" {
		return errors.New("missing required configuration: token")
	}
	return nil
}
