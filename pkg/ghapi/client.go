// Package ghapi is a stateless authenticated transport for the GitHub REST
// API. It attaches the caller's bearer token per call, pins the API version,
// and classifies failures into the marks callers branch on. It holds no
// token state of its own and never logs credentials.
package ghapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/octobridge/octobridge/pkg/http/headers"
	"github.com/octobridge/octobridge/pkg/http/mark"
	"github.com/octobridge/octobridge/pkg/utils"
)

// DefaultTimeout bounds a single upstream call when no custom client is supplied.
const DefaultTimeout = 30 * time.Second

const defaultUserAgent = "octobridge"

// Client issues authenticated requests against a single GitHub host.
type Client struct {
	httpClient *http.Client
	apiHost    utils.APIHostResolver
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. Tests use this to
// install counting transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a Client for the given host.
func NewClient(apiHost utils.APIHostResolver, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		apiHost:    apiHost,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Response is the parsed outcome of a successful upstream call.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// APIError is a non-2xx upstream outcome. It is always marked with one of
// the transport sentinels in pkg/http/mark.
type APIError struct {
	StatusCode       int
	Message          string
	DocumentationURL string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github api: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("github api: %s (status %d)", e.Message, e.StatusCode)
}

// RateLimitError is an APIError for 429 and rate-limited 403 responses.
// ResetAt is the zero time when upstream gave no hint.
type RateLimitError struct {
	APIError
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return e.APIError.Error()
	}
	return fmt.Sprintf("%s, resets at %s", e.APIError.Error(), e.ResetAt.UTC().Format(time.RFC3339))
}

// Unwrap exposes the embedded APIError to errors.As.
func (e *RateLimitError) Unwrap() error {
	return &e.APIError
}

// Call issues one authenticated request and returns the parsed body. The
// path is relative to the host's REST base; query and body may be nil. The
// call runs to completion or to the client timeout; there are no retries.
func (c *Client) Call(ctx context.Context, token, method, path string, query url.Values, body any) (*Response, error) {
	base, err := c.apiHost.BaseRESTURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve REST base URL: %w", err)
	}

	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request path %q: %w", path, err)
	}
	u := base.ResolveReference(rel)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(headers.AuthorizationHeader, "Bearer "+token)
	req.Header.Set(headers.AcceptHeader, headers.AcceptGitHubJSON)
	req.Header.Set(headers.GitHubAPIVersionHeader, headers.GitHubAPIVersion)
	req.Header.Set(headers.UserAgentHeader, c.userAgent)
	if body != nil {
		req.Header.Set(headers.ContentTypeHeader, headers.ContentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, mark.With(fmt.Errorf("upstream call failed: %w", err), mark.ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, mark.With(fmt.Errorf("failed to read upstream response: %w", err), mark.ErrUnavailable)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logDebug("upstream call succeeded", "method", method, "path", path, "status", resp.StatusCode)
		return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
	}

	return nil, c.classifyFailure(resp, respBody, method, path)
}

// classifyFailure turns a non-2xx response into a marked typed error.
func (c *Client) classifyFailure(resp *http.Response, body []byte, method, path string) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var parsed struct {
		Message          string `json:"message"`
		DocumentationURL string `json:"documentation_url"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Message = parsed.Message
		apiErr.DocumentationURL = parsed.DocumentationURL
	}

	c.logDebug("upstream call failed", "method", method, "path", path, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return mark.With(apiErr, mark.ErrUnauthorized)
	case resp.StatusCode == http.StatusTooManyRequests:
		return mark.With(rateLimited(apiErr, resp), mark.ErrTooManyRequests)
	case resp.StatusCode == http.StatusForbidden && rateLimitExhausted(resp):
		// GitHub signals the primary rate limit with 403 plus
		// X-RateLimit-Remaining: 0 rather than 429.
		return mark.With(rateLimited(apiErr, resp), mark.ErrTooManyRequests)
	case resp.StatusCode == http.StatusForbidden:
		return mark.With(apiErr, mark.ErrForbidden)
	case resp.StatusCode == http.StatusNotFound:
		return mark.With(apiErr, mark.ErrNotFound)
	default:
		return mark.With(apiErr, mark.ErrUnavailable)
	}
}

func rateLimitExhausted(resp *http.Response) bool {
	return resp.Header.Get(headers.RateLimitRemainingHeader) == "0"
}

// rateLimited wraps apiErr with the reset hint upstream provided, if any:
// X-RateLimit-Reset carries epoch seconds, Retry-After a relative delay.
func rateLimited(apiErr *APIError, resp *http.Response) *RateLimitError {
	rle := &RateLimitError{APIError: *apiErr}

	if reset := resp.Header.Get(headers.RateLimitResetHeader); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			rle.ResetAt = time.Unix(epoch, 0)
			return rle
		}
	}
	if after := resp.Header.Get(headers.RetryAfterHeader); after != "" {
		if secs, err := strconv.Atoi(after); err == nil {
			rle.ResetAt = time.Now().Add(time.Duration(secs) * time.Second)
		}
	}
	return rle
}

func (c *Client) logDebug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
