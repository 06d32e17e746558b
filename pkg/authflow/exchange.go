// Package authflow implements the OAuth2 authorization-code flow against
// GitHub: CSRF-safe state tracking between redirect and callback, the
// code-for-token exchange, and the follow-up identity fetch.
package authflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	gogithub "github.com/google/go-github/v79/github"
	"github.com/octobridge/octobridge/pkg/sanitize"
	"github.com/octobridge/octobridge/pkg/scopes"
	"github.com/octobridge/octobridge/pkg/utils"
	"golang.org/x/oauth2"
)

// Identity is the authenticated user behind a fresh grant, shaped the way
// the callback redirect serializes it.
type Identity struct {
	Login     string  `json:"login"`
	Name      string  `json:"name"`
	AvatarURL string  `json:"avatar_url"`
	Email     *string `json:"email"`
}

// AccessGrant is the outcome of a successful exchange. The server holds it
// only for the duration of the callback request; ownership transfers to the
// caller via the redirect.
type AccessGrant struct {
	Token         string
	TokenType     string
	GrantedScopes []string
	Identity      *Identity
}

// Config is the OAuth application configuration for the exchange client.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Host resolves the authorize, token, and REST endpoints. Defaults to
	// github.com.
	Host utils.APIHostResolver
}

// Exchanger converts authorization codes into access grants.
type Exchanger struct {
	oauthCfg   *oauth2.Config
	store      Store
	apiHost    utils.APIHostResolver
	httpClient *http.Client
	logger     *slog.Logger
}

// ExchangerOption configures an Exchanger at construction time.
type ExchangerOption func(*Exchanger)

// WithHTTPClient overrides the HTTP client used for both the token exchange
// and the identity fetch. Tests use this to install mock transports.
func WithHTTPClient(hc *http.Client) ExchangerOption {
	return func(e *Exchanger) {
		if hc != nil {
			e.httpClient = hc
		}
	}
}

// WithExchangerLogger sets the logger used for exchange diagnostics.
func WithExchangerLogger(logger *slog.Logger) ExchangerOption {
	return func(e *Exchanger) {
		e.logger = logger
	}
}

// NewExchanger builds an Exchanger for the given application config.
func NewExchanger(cfg Config, store Store, opts ...ExchangerOption) (*Exchanger, error) {
	host := cfg.Host
	if host == nil {
		dotcom, err := utils.NewAPIHost("")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve default host: %w", err)
		}
		host = dotcom
	}

	authorizeURL, err := host.AuthorizeURL(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authorize URL: %w", err)
	}
	tokenURL, err := host.AccessTokenURL(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve access token URL: %w", err)
	}

	e := &Exchanger{
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authorizeURL.String(),
				TokenURL: tokenURL.String(),
			},
		},
		store:   store,
		apiHost: host,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// AuthorizationURL builds the provider authorize URL for the given scopes
// and state. Pure function of configuration and inputs; no network call.
func (e *Exchanger) AuthorizationURL(requestedScopes []string, state string) string {
	cfg := *e.oauthCfg
	cfg.Scopes = requestedScopes
	return cfg.AuthCodeURL(state)
}

// HandleCallback drives the callback half of the flow: validate parameters,
// consume the pending state (the single state mutation of the flow),
// exchange the code, and fetch the identity.
//
// A failed identity fetch does not invalidate the grant: the grant is
// returned alongside an error marked ErrIdentityFetch, and the caller
// decides how to surface it.
func (e *Exchanger) HandleCallback(ctx context.Context, code, state, errParam string) (*AccessGrant, error) {
	if errParam != "" {
		return nil, fmt.Errorf("%w: provider returned %q", ErrUserDenied, errParam)
	}
	if code == "" || state == "" {
		return nil, ErrMissingParameters
	}

	pending, err := e.store.ConsumePending(state)
	if err != nil {
		return nil, err
	}

	token, err := e.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	grant := &AccessGrant{
		Token:         token.AccessToken,
		TokenType:     token.Type(),
		GrantedScopes: grantedScopes(token, pending),
	}

	identity, err := e.fetchIdentity(ctx, token.AccessToken)
	if err != nil {
		e.logWarn("identity fetch failed after successful exchange", "error", err)
		return grant, fmt.Errorf("%w: %w", ErrIdentityFetch, err)
	}
	grant.Identity = identity

	return grant, nil
}

func (e *Exchanger) exchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}

	token, err := e.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: response contained no access token", ErrExchangeFailed)
	}
	return token, nil
}

// grantedScopes prefers the scope list the provider reports on the token
// response; GitHub sends it comma-separated. Falls back to the scopes the
// flow requested.
func grantedScopes(token *oauth2.Token, pending *PendingAuthorization) []string {
	if raw, ok := token.Extra("scope").(string); ok {
		if granted := scopes.ParseScopeList(raw); len(granted) > 0 {
			return granted
		}
	}
	return pending.RequestedScopes
}

func (e *Exchanger) fetchIdentity(ctx context.Context, token string) (*Identity, error) {
	client := gogithub.NewClient(e.httpClient).WithAuthToken(token)
	if base, err := e.apiHost.BaseRESTURL(ctx); err == nil {
		client.BaseURL = base
	}

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, err
	}

	return &Identity{
		Login:     user.GetLogin(),
		Name:      sanitize.FilterInvisibleCharacters(user.GetName()),
		AvatarURL: user.GetAvatarURL(),
		Email:     user.Email,
	}, nil
}

func (e *Exchanger) logWarn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
