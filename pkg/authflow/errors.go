package authflow

import "errors"

// OAuth-phase failures. Each maps to a stable machine-readable code on the
// callback redirect so the client UI can translate it; see Handler.Callback.
var (
	// ErrInvalidState reports a callback state that is unknown or already
	// consumed. A state is accepted at most once.
	ErrInvalidState = errors.New("invalid or already used state")

	// ErrExpiredState reports a state older than the pending-authorization
	// window. The entry is removed either way.
	ErrExpiredState = errors.New("state has expired")

	// ErrUserDenied reports that the user declined authorization at the
	// provider.
	ErrUserDenied = errors.New("authorization denied by user")

	// ErrMissingParameters reports a callback without code or state.
	ErrMissingParameters = errors.New("missing code or state parameter")

	// ErrExchangeFailed reports a failed or empty code-for-token exchange.
	ErrExchangeFailed = errors.New("token exchange failed")

	// ErrIdentityFetch reports that the post-exchange identity lookup
	// failed. The grant itself is still valid; callers treat this as
	// non-fatal.
	ErrIdentityFetch = errors.New("identity fetch failed")
)
