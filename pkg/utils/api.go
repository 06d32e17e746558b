package utils //nolint:revive //TODO: figure out a better name for this package

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// APIHostResolver resolves the upstream endpoints this server talks to: the
// REST API base and the two OAuth web-flow endpoints.
type APIHostResolver interface {
	BaseRESTURL(ctx context.Context) (*url.URL, error)
	AuthorizeURL(ctx context.Context) (*url.URL, error)
	AccessTokenURL(ctx context.Context) (*url.URL, error)
}

// APIHost is a static APIHostResolver for a single GitHub host.
type APIHost struct {
	restURL      *url.URL
	authorizeURL *url.URL
	tokenURL     *url.URL
}

var _ APIHostResolver = APIHost{}

// NewAPIHost resolves endpoints for the given host. An empty string means
// github.com; anything else is treated as a GitHub Enterprise Server host.
func NewAPIHost(s string) (APIHostResolver, error) {
	return parseAPIHost(s)
}

func (a APIHost) BaseRESTURL(_ context.Context) (*url.URL, error) {
	return a.restURL, nil
}

func (a APIHost) AuthorizeURL(_ context.Context) (*url.URL, error) {
	return a.authorizeURL, nil
}

func (a APIHost) AccessTokenURL(_ context.Context) (*url.URL, error) {
	return a.tokenURL, nil
}

func newDotcomHost() (APIHost, error) {
	restURL, err := url.Parse("https://api.github.com/")
	if err != nil {
		return APIHost{}, fmt.Errorf("failed to parse dotcom REST URL: %w", err)
	}

	authorizeURL, err := url.Parse("https://github.com/login/oauth/authorize")
	if err != nil {
		return APIHost{}, fmt.Errorf("failed to parse dotcom authorize URL: %w", err)
	}

	tokenURL, err := url.Parse("https://github.com/login/oauth/access_token")
	if err != nil {
		return APIHost{}, fmt.Errorf("failed to parse dotcom access token URL: %w", err)
	}

	return APIHost{
		restURL:      restURL,
		authorizeURL: authorizeURL,
		tokenURL:     tokenURL,
	}, nil
}

func newGHESHost(hostname string) (APIHost, error) {
	u, err := url.Parse(hostname)
	if err != nil {
		return APIHost{}, fmt.Errorf("failed to parse GHES URL: %w", err)
	}

	restURL, err := url.Parse(fmt.Sprintf("%s://%s/api/v3/", u.Scheme, u.Host))
	if err != nil {
		return APIHost{}, fmt.Errorf("failed to parse GHES REST URL: %w", err)
	}

	authorizeURL, err := url.Parse(fmt.Sprintf("%s://%s/login/oauth/authorize", u.Scheme, u.Host))
	if err != nil {
		return APIHost{}, fmt.Errorf("failed to parse GHES authorize URL: %w", err)
	}

	tokenURL, err := url.Parse(fmt.Sprintf("%s://%s/login/oauth/access_token", u.Scheme, u.Host))
	if err != nil {
		return APIHost{}, fmt.Errorf("failed to parse GHES access token URL: %w", err)
	}

	return APIHost{
		restURL:      restURL,
		authorizeURL: authorizeURL,
		tokenURL:     tokenURL,
	}, nil
}

func parseAPIHost(s string) (APIHost, error) {
	if s == "" {
		return newDotcomHost()
	}

	u, err := url.Parse(s)
	if err != nil {
		return APIHost{}, fmt.Errorf("could not parse host as URL: %s", s)
	}

	if u.Scheme == "" {
		return APIHost{}, fmt.Errorf("host must have a scheme (http or https): %s", s)
	}

	if strings.HasSuffix(u.Hostname(), "github.com") {
		return newDotcomHost()
	}

	return newGHESHost(s)
}
