package utils //nolint:revive //TODO: figure out a better name for this package

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	httpheaders "github.com/octobridge/octobridge/pkg/http/headers"
	"github.com/octobridge/octobridge/pkg/http/mark"
)

// TokenType classifies a GitHub credential by its prefix.
type TokenType int

const (
	TokenTypeUnknown TokenType = iota
	TokenTypePersonalAccessToken
	TokenTypeFineGrainedPersonalAccessToken
	TokenTypeOAuthAccessToken
	TokenTypeUserToServerGitHubAppToken
	TokenTypeServerToServerGitHubAppToken
)

// String returns the value GitHub uses in token_type-style fields, or a
// human-readable classification for logging. Never includes the token itself.
func (t TokenType) String() string {
	switch t {
	case TokenTypePersonalAccessToken:
		return "personal_access_token"
	case TokenTypeFineGrainedPersonalAccessToken:
		return "fine_grained_personal_access_token"
	case TokenTypeOAuthAccessToken:
		return "oauth_access_token"
	case TokenTypeUserToServerGitHubAppToken:
		return "user_to_server_token"
	case TokenTypeServerToServerGitHubAppToken:
		return "server_to_server_token"
	default:
		return "unknown"
	}
}

var supportedGitHubPrefixes = map[string]TokenType{
	"ghp_":        TokenTypePersonalAccessToken,            // Personal access token (classic)
	"github_pat_": TokenTypeFineGrainedPersonalAccessToken, // Fine-grained personal access token
	"gho_":        TokenTypeOAuthAccessToken,               // OAuth access token, the kind the exchange produces
	"ghu_":        TokenTypeUserToServerGitHubAppToken,     // User access token for a GitHub App
	"ghs_":        TokenTypeServerToServerGitHubAppToken,   // Installation access token for a GitHub App
}

var (
	ErrMissingAuthorizationHeader = fmt.Errorf("%w: missing required Authorization header", mark.ErrUnauthorized)
	ErrBadAuthorizationHeader     = fmt.Errorf("%w: Authorization header is badly formatted", mark.ErrBadRequest)
)

// oldPatternRegexp matches pre-2021 GitHub API tokens, which carried no
// identifying prefix: 40 hex characters.
var oldPatternRegexp = regexp.MustCompile(`\A[a-f0-9]{40}\z`)

// ClassifyToken returns the TokenType for a raw GitHub credential.
func ClassifyToken(token string) TokenType {
	for prefix, tokenType := range supportedGitHubPrefixes {
		if strings.HasPrefix(token, prefix) {
			return tokenType
		}
	}
	if oldPatternRegexp.MatchString(token) {
		return TokenTypePersonalAccessToken
	}
	return TokenTypeUnknown
}

// ParseAuthorizationHeader extracts and classifies the bearer credential from
// the request's Authorization header.
func ParseAuthorizationHeader(req *http.Request) (tokenType TokenType, token string, _ error) {
	authHeader := req.Header.Get(httpheaders.AuthorizationHeader)
	if authHeader == "" {
		return 0, "", ErrMissingAuthorizationHeader
	}

	// support both "Bearer" and "bearer" to conform to api.github.com
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		token = authHeader[7:]
	} else {
		token = authHeader
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return 0, "", ErrBadAuthorizationHeader
	}

	return ClassifyToken(token), token, nil
}
