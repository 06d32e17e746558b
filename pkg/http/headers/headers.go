package headers

const (
	// AuthorizationHeader is a standard HTTP Header.
	AuthorizationHeader = "Authorization"
	// ContentTypeHeader is a standard HTTP Header.
	ContentTypeHeader = "Content-Type"
	// AcceptHeader is a standard HTTP Header.
	AcceptHeader = "Accept"
	// UserAgentHeader is a standard HTTP Header.
	UserAgentHeader = "User-Agent"
	// RetryAfterHeader is a standard HTTP Header carrying a rate-limit backoff hint.
	RetryAfterHeader = "Retry-After"

	// ContentTypeJSON is the standard MIME type for JSON.
	ContentTypeJSON = "application/json"

	// GitHub-specific headers.

	// GitHubAPIVersionHeader is the header used to specify the GitHub API version.
	GitHubAPIVersionHeader = "X-GitHub-Api-Version"
	// RateLimitRemainingHeader carries the number of requests left in the current window.
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	// RateLimitResetHeader carries the UTC epoch seconds at which the window resets.
	RateLimitResetHeader = "X-RateLimit-Reset"
	// OAuthScopesHeader is the response header listing the token's granted OAuth scopes.
	OAuthScopesHeader = "X-OAuth-Scopes"

	// AcceptGitHubJSON is the content-negotiation value GitHub's REST API expects.
	AcceptGitHubJSON = "application/vnd.github+json"
	// GitHubAPIVersion is the REST API version this server pins.
	GitHubAPIVersion = "2022-11-28"
)
