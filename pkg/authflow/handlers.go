package authflow

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-querystring/query"
	"github.com/octobridge/octobridge/pkg/scopes"
)

// Redirect error codes, stable for client-side translation.
const (
	CodeAccessDenied       = "access_denied"
	CodeInvalidState       = "invalid_state"
	CodeMissingCodeOrState = "missing_code_or_state"
	CodeExchangeFailed     = "oauth_exchange_failed"
)

// DefaultScopes are requested when /auth/github is hit without a scopes
// parameter: the minimum the catalogue's tools plus the identity fetch need.
var DefaultScopes = []string{"repo", "read:user", "user:email"}

// Handler serves the two browser-facing endpoints of the flow.
type Handler struct {
	store         Store
	exchanger     *Exchanger
	clientOrigin  string
	defaultScopes []string
	logger        *slog.Logger
}

// HandlerOption configures a Handler at construction time.
type HandlerOption func(*Handler)

// WithDefaultScopes overrides the scopes requested when the authorize
// request names none.
func WithDefaultScopes(s []string) HandlerOption {
	return func(h *Handler) {
		if len(s) > 0 {
			h.defaultScopes = s
		}
	}
}

// WithHandlerLogger sets the logger used for handler diagnostics.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a Handler. clientOrigin is where the callback
// redirects land, success or failure.
func NewHandler(store Store, exchanger *Exchanger, clientOrigin string, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:         store,
		exchanger:     exchanger,
		clientOrigin:  strings.TrimSuffix(clientOrigin, "/"),
		defaultScopes: DefaultScopes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// RegisterRoutes registers the OAuth flow routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/github", h.Authorize)
	r.Get("/auth/callback", h.Callback)
}

// Authorize starts the flow: record a pending authorization and redirect
// the browser to the provider's authorize endpoint.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	requested := scopes.Normalize(scopes.ParseScopeList(r.URL.Query().Get("scopes")))
	if len(requested) == 0 {
		requested = h.defaultScopes
	}

	state, err := h.store.CreatePending(requested)
	if err != nil {
		h.logError("failed to create pending authorization", "error", err)
		http.Error(w, "failed to start authorization", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.exchanger.AuthorizationURL(requested, state), http.StatusFound)
}

// callbackSuccess is the query string appended to the client origin on a
// successful exchange.
type callbackSuccess struct {
	Success     bool   `url:"success"`
	AccessToken string `url:"access_token"`
	User        string `url:"user,omitempty"`
	Scope       string `url:"scope"`
}

// Callback finishes the flow. Failures redirect with a stable error code;
// a failed identity fetch is non-fatal and redirects success without the
// user parameter.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	grant, err := h.exchanger.HandleCallback(r.Context(), q.Get("code"), q.Get("state"), q.Get("error"))

	if err != nil && !errors.Is(err, ErrIdentityFetch) {
		h.redirectError(w, r, err)
		return
	}

	success := callbackSuccess{
		Success:     true,
		AccessToken: grant.Token,
		Scope:       scopes.Join(grant.GrantedScopes),
	}
	if grant.Identity != nil {
		user, err := json.Marshal(grant.Identity)
		if err == nil {
			success.User = string(user)
		}
	}

	values, err := query.Values(success)
	if err != nil {
		h.logError("failed to encode callback redirect", "error", err)
		http.Error(w, "failed to complete authorization", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.clientOrigin+"/?"+values.Encode(), http.StatusFound)
}

func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, err error) {
	code := CodeExchangeFailed
	switch {
	case errors.Is(err, ErrUserDenied):
		code = CodeAccessDenied
	case errors.Is(err, ErrMissingParameters):
		code = CodeMissingCodeOrState
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrExpiredState):
		// Expired states collapse to invalid_state on the wire; the
		// remediation is the same, restart the flow.
		code = CodeInvalidState
	}

	h.logDebug("authorization callback failed", "code", code)

	values := url.Values{"error": []string{code}}
	http.Redirect(w, r, h.clientOrigin+"/?"+values.Encode(), http.StatusFound)
}

func (h *Handler) logError(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Error(msg, args...)
	}
}

func (h *Handler) logDebug(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}
