// Package dispatch is the execution core: it resolves a tool name against
// the catalogue, validates and normalizes the raw arguments against the
// tool's schema, maps them onto the upstream endpoint via the routing
// table, and wraps the outcome in a uniform result envelope.
//
// The error discipline is fixed: validation failures return a typed error
// before any network call; anything that fails after dispatch resolves —
// upstream 4xx and 5xx included — comes back as a Result with IsError set,
// so a calling agent can branch on the envelope without exception handling.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/octobridge/octobridge/pkg/catalog"
	"github.com/octobridge/octobridge/pkg/ghapi"
	"github.com/octobridge/octobridge/pkg/http/mark"
	"github.com/yosida95/uritemplate/v3"
)

// Invocation is one tool-call request: a name, raw arguments, and the
// caller's bearer token. Transient; never persisted.
type Invocation struct {
	ToolName  string
	Arguments map[string]any
	Token     string
}

// Content is one item of a result envelope.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the uniform outcome envelope for a dispatched invocation.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

// Dispatcher executes invocations against the upstream API.
type Dispatcher struct {
	catalog *catalog.Catalog
	api     *ghapi.Client
	logger  *slog.Logger
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New builds a Dispatcher and cross-checks the routing table against the
// catalogue: every tool needs a route, every route a tool, and every
// argument a route references must be declared in the tool's schema.
func New(cat *catalog.Catalog, api *ghapi.Client, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{catalog: cat, api: api}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	tools := cat.Tools()
	if len(tools) != len(routeTable) {
		return nil, fmt.Errorf("routing table has %d entries for %d catalogue tools", len(routeTable), len(tools))
	}
	for _, tool := range tools {
		rt, ok := routeTable[tool.Name]
		if !ok {
			return nil, fmt.Errorf("tool %s has no route", tool.Name)
		}
		declared := tool.InputSchema.Properties
		required := make(map[string]bool, len(tool.InputSchema.Required))
		for _, name := range tool.InputSchema.Required {
			required[name] = true
		}
		for _, name := range rt.pathParams() {
			if _, ok := declared[name]; !ok {
				return nil, fmt.Errorf("tool %s: path parameter %s not declared in schema", tool.Name, name)
			}
			if !required[name] {
				return nil, fmt.Errorf("tool %s: path parameter %s must be required", tool.Name, name)
			}
		}
		for _, name := range append(append([]string{}, rt.query...), rt.body...) {
			if _, ok := declared[name]; !ok {
				return nil, fmt.Errorf("tool %s: routed parameter %s not declared in schema", tool.Name, name)
			}
		}
	}
	return d, nil
}

// Dispatch runs one invocation. A non-nil error is always a validation
// failure (marked bad request) raised before any network call.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) (*Result, error) {
	tool, err := d.catalog.Get(inv.ToolName)
	if err != nil {
		return nil, mark.With(fmt.Errorf("%w: %s", ErrUnknownTool, inv.ToolName), mark.ErrBadRequest)
	}

	args, err := validateArguments(tool.InputSchema, inv.Arguments)
	if err != nil {
		return nil, mark.With(err, mark.ErrBadRequest)
	}

	rt := routeTable[tool.Name]
	applyDefaults(args, rt.defaults)

	path, query, body, err := bindRoute(rt, args)
	if err != nil {
		return nil, mark.With(err, mark.ErrBadRequest)
	}

	resp, err := d.api.Call(ctx, inv.Token, rt.method, path, query, body)
	if err != nil {
		d.logDebug("tool execution failed", "tool", tool.Name, "error", err)
		return failureResult(err), nil
	}

	return successResult(resp), nil
}

// validateArguments checks the raw arguments against the schema and returns
// a normalized copy: required parameters present, no undeclared parameters,
// every value of its declared type, enums and numeric bounds honored.
func validateArguments(schema *jsonschema.Schema, raw map[string]any) (map[string]any, error) {
	for _, name := range schema.Required {
		if _, ok := raw[name]; !ok {
			return nil, &MissingArgumentError{Name: name}
		}
	}

	args := make(map[string]any, len(raw))
	for name, value := range raw {
		paramSchema, ok := schema.Properties[name]
		if !ok {
			return nil, &InvalidArgumentError{Name: name, Reason: "not a declared parameter"}
		}
		normalized, err := normalizeValue(name, paramSchema, value)
		if err != nil {
			return nil, err
		}
		args[name] = normalized
	}
	return args, nil
}

// normalizeValue converts one raw JSON value into the tagged representation
// its schema declares, rejecting invalid shapes before they reach routing.
func normalizeValue(name string, schema *jsonschema.Schema, raw any) (any, error) {
	switch schema.Type {
	case "string":
		s, ok := raw.(string)
		if !ok {
			return nil, &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("expected a string, got %T", raw)}
		}
		if len(schema.Enum) > 0 && !enumContains(schema.Enum, s) {
			return nil, &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("%q is not a permitted value", s), Allowed: enumStrings(schema.Enum)}
		}
		return s, nil

	case "integer":
		n, err := toInt(name, raw)
		if err != nil {
			return nil, err
		}
		if err := checkBounds(name, schema, float64(n)); err != nil {
			return nil, err
		}
		return n, nil

	case "number":
		f, ok := toFloat(raw)
		if !ok {
			return nil, &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("expected a number, got %T", raw)}
		}
		if err := checkBounds(name, schema, f); err != nil {
			return nil, err
		}
		return f, nil

	case "boolean":
		b, ok := raw.(bool)
		if !ok {
			return nil, &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("expected a boolean, got %T", raw)}
		}
		return b, nil

	case "array":
		return toStringSlice(name, raw)

	default:
		return nil, &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("unsupported parameter type %q", schema.Type)}
	}
}

func toInt(name string, raw any) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, &InvalidArgumentError{Name: name, Reason: "expected an integer, got a fractional number"}
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("expected an integer, got %T", raw)}
	}
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toStringSlice(name string, raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("expected an array of strings, found %T element", item)}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("expected an array of strings, got %T", raw)}
	}
}

func checkBounds(name string, schema *jsonschema.Schema, v float64) error {
	if schema.Minimum != nil && v < *schema.Minimum {
		return &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("%v is below the minimum of %v", v, *schema.Minimum)}
	}
	if schema.Maximum != nil && v > *schema.Maximum {
		return &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("%v exceeds the maximum of %v", v, *schema.Maximum)}
	}
	return nil
}

func enumContains(enum []any, s string) bool {
	for _, e := range enum {
		if es, ok := e.(string); ok && es == s {
			return true
		}
	}
	return false
}

func enumStrings(enum []any) []string {
	out := make([]string, 0, len(enum))
	for _, e := range enum {
		if es, ok := e.(string); ok {
			out = append(out, es)
		}
	}
	return out
}

// applyDefaults fills absent arguments with the route's defaults. Supplied
// values always win.
func applyDefaults(args map[string]any, defaults map[string]any) {
	for name, value := range defaults {
		if _, ok := args[name]; !ok {
			args[name] = value
		}
	}
}

// bindRoute splits validated arguments into the expanded path, the query
// parameters, and the request body per the route definition.
func bindRoute(rt route, args map[string]any) (string, url.Values, any, error) {
	vars := uritemplate.Values{}
	for _, name := range rt.pathParams() {
		vars[name] = uritemplate.String(stringify(args[name]))
	}
	path, err := rt.path.Expand(vars)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to expand route path: %w", err)
	}

	var query url.Values
	for _, name := range rt.query {
		value, ok := args[name]
		if !ok {
			continue
		}
		if query == nil {
			query = url.Values{}
		}
		query.Set(name, stringify(value))
	}

	var body map[string]any
	for _, name := range rt.body {
		value, ok := args[name]
		if !ok {
			continue
		}
		if body == nil {
			body = make(map[string]any)
		}
		body[name] = value
	}

	if body == nil {
		return path, query, nil, nil
	}
	return path, query, body, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// successResult wraps the raw upstream body as a single text content item.
// The body is already structured JSON; an empty body (204-style responses)
// becomes a minimal status object so the content is always parseable.
func successResult(resp *ghapi.Response) *Result {
	text := string(resp.Body)
	if len(resp.Body) == 0 {
		text = fmt.Sprintf(`{"status":%d}`, resp.StatusCode)
	}
	return &Result{
		Content: []Content{{Type: "text", Text: text}},
		IsError: false,
	}
}

// failurePayload is the structured description of an upstream failure
// embedded in an IsError result.
type failurePayload struct {
	Error          string `json:"error"`
	Status         int    `json:"status,omitempty"`
	Message        string `json:"message,omitempty"`
	RateLimitReset string `json:"rate_limit_reset,omitempty"`
}

// failureResult converts an upstream error into an errors-as-data envelope.
func failureResult(err error) *Result {
	payload := failurePayload{Error: failureKind(err)}

	var rle *ghapi.RateLimitError
	var apiErr *ghapi.APIError
	switch {
	case errors.As(err, &rle):
		payload.Status = rle.StatusCode
		payload.Message = rle.Message
		if !rle.ResetAt.IsZero() {
			payload.RateLimitReset = rle.ResetAt.UTC().Format(time.RFC3339)
		}
	case errors.As(err, &apiErr):
		payload.Status = apiErr.StatusCode
		payload.Message = apiErr.Message
	default:
		payload.Message = err.Error()
	}

	text, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		text = []byte(`{"error":"upstream_error"}`)
	}
	return &Result{
		Content: []Content{{Type: "text", Text: string(text)}},
		IsError: true,
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, mark.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, mark.ErrForbidden):
		return "forbidden"
	case errors.Is(err, mark.ErrNotFound):
		return "not_found"
	case errors.Is(err, mark.ErrTooManyRequests):
		return "rate_limited"
	default:
		return "upstream_error"
	}
}

func (d *Dispatcher) logDebug(msg string, args ...any) {
	if d != nil && d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
