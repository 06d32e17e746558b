// Package mark tags errors with a well-known sentinel so callers can branch
// on the kind of failure without knowing the concrete error type.
package mark

import "errors"

// Sentinel errors for the failure kinds this server distinguishes. An error
// that carries none of these marks is unexpected and should surface as an
// internal failure. Application-specific errors live in their own packages
// and are attached to one of these via With.
var (
	ErrNotFound        = errors.New("not found")
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrTooManyRequests = errors.New("too many requests")
	ErrUnavailable     = errors.New("unavailable")
)

// With wraps err so that errors.Is and errors.As match both err and markErr,
// and anything either of them wraps.
func With(err, markErr error) error {
	if err == nil {
		return nil
	}
	return marked{wrapped: err, mark: markErr}
}

type marked struct {
	wrapped error
	mark    error
}

func (m marked) Is(target error) bool {
	// errors.Is falls through to Unwrap when this returns false, so the
	// wrapped chain is still consulted.
	return errors.Is(m.mark, target)
}

func (m marked) As(target any) bool {
	return errors.As(m.mark, target)
}

func (m marked) Unwrap() error {
	return m.wrapped
}

func (m marked) Error() string {
	return m.mark.Error() + ": " + m.wrapped.Error()
}
