package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIHostDotcom(t *testing.T) {
	for _, input := range []string{"", "https://github.com", "https://www.github.com"} {
		host, err := NewAPIHost(input)
		require.NoError(t, err, "input %q", input)

		rest, err := host.BaseRESTURL(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "https://api.github.com/", rest.String(), "input %q", input)

		authorize, err := host.AuthorizeURL(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "https://github.com/login/oauth/authorize", authorize.String())

		token, err := host.AccessTokenURL(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "https://github.com/login/oauth/access_token", token.String())
	}
}

func TestNewAPIHostGHES(t *testing.T) {
	host, err := NewAPIHost("https://github.example.test")
	require.NoError(t, err)

	rest, err := host.BaseRESTURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://github.example.test/api/v3/", rest.String())

	authorize, err := host.AuthorizeURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://github.example.test/login/oauth/authorize", authorize.String())

	token, err := host.AccessTokenURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://github.example.test/login/oauth/access_token", token.String())
}

func TestNewAPIHostRequiresScheme(t *testing.T) {
	_, err := NewAPIHost("github.example.test")
	assert.Error(t, err)
}
