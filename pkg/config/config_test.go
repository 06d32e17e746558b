package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.Set("client-id", "id")
	v.Set("client-secret", "secret")
	v.Set("redirect-uri", "http://localhost:8080/auth/callback")
	v.Set("client-origin", "http://localhost:3000")
	v.Set("listen-address", ":8080")
	v.Set("token", "ghp_abc")
	v.Set("log-level", "debug")
	return v
}

func TestLoad(t *testing.T) {
	cfg := Load(newTestViper())

	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "secret", cfg.ClientSecret)
	assert.Equal(t, "http://localhost:8080/auth/callback", cfg.RedirectURI)
	assert.Equal(t, "http://localhost:3000", cfg.ClientOrigin)
	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, "ghp_abc", cfg.Token)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateHTTP(t *testing.T) {
	cfg := Load(newTestViper())
	require.NoError(t, cfg.ValidateHTTP())

	cfg.ClientSecret = ""
	cfg.ClientOrigin = ""
	err := cfg.ValidateHTTP()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client-secret")
	assert.Contains(t, err.Error(), "client-origin")
	assert.NotContains(t, err.Error(), "client-id,")
}

func TestValidateStdio(t *testing.T) {
	cfg := Load(newTestViper())
	require.NoError(t, cfg.ValidateStdio())

	cfg.Token = ""
	assert.Error(t, cfg.ValidateStdio())
}
