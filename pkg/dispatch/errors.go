package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTool reports an invocation naming a tool outside the catalogue.
var ErrUnknownTool = errors.New("unknown tool")

// MissingArgumentError reports a required parameter absent from an invocation.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.Name)
}

// InvalidArgumentError reports a supplied parameter that violates the tool's
// schema: wrong type, value outside the enum, or out of numeric bounds.
type InvalidArgumentError struct {
	Name    string
	Reason  string
	Allowed []string
}

func (e *InvalidArgumentError) Error() string {
	msg := fmt.Sprintf("invalid argument %s: %s", e.Name, e.Reason)
	if len(e.Allowed) > 0 {
		msg += fmt.Sprintf(" (allowed: %s)", strings.Join(e.Allowed, ", "))
	}
	return msg
}
