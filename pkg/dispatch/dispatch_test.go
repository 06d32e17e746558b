package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/octobridge/octobridge/pkg/catalog"
	"github.com/octobridge/octobridge/pkg/ghapi"
	"github.com/octobridge/octobridge/pkg/http/headers"
	"github.com/octobridge/octobridge/pkg/http/mark"
	"github.com/octobridge/octobridge/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTransport is a RoundTripper that records every request and serves
// a canned response. Validation tests use it to prove no network traffic
// happens before validation passes.
type countingTransport struct {
	calls    int
	lastReq  *http.Request
	lastBody []byte

	status int
	header http.Header
	body   string
}

func (ct *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ct.calls++
	ct.lastReq = req
	if req.Body != nil {
		ct.lastBody, _ = io.ReadAll(req.Body)
	}

	status := ct.status
	if status == 0 {
		status = http.StatusOK
	}
	header := ct.header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(ct.body)),
		Request:    req,
	}, nil
}

func newTestDispatcher(t *testing.T, ct *countingTransport) *Dispatcher {
	t.Helper()

	host, err := utils.NewAPIHost("")
	require.NoError(t, err)

	api := ghapi.NewClient(host, ghapi.WithHTTPClient(&http.Client{Transport: ct}))
	d, err := New(catalog.New(), api)
	require.NoError(t, err)
	return d
}

func dispatchArgs(t *testing.T, d *Dispatcher, tool string, args map[string]any) (*Result, error) {
	t.Helper()
	return d.Dispatch(context.Background(), Invocation{
		ToolName:  tool,
		Arguments: args,
		Token:     "gho_abc",
	})
}

func TestNewCrossChecksRoutingTable(t *testing.T) {
	host, err := utils.NewAPIHost("")
	require.NoError(t, err)

	// Every catalogue tool must be routable or construction fails loudly.
	_, err = New(catalog.New(), ghapi.NewClient(host))
	require.NoError(t, err)
}

func TestDispatchUnknownTool(t *testing.T) {
	ct := &countingTransport{}
	d := newTestDispatcher(t, ct)

	result, err := dispatchArgs(t, d, "launch_rockets", nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.ErrorIs(t, err, mark.ErrBadRequest)
	assert.Zero(t, ct.calls, "unknown tool must not reach the network")
}

func TestDispatchMissingRequiredArgument(t *testing.T) {
	ct := &countingTransport{}
	d := newTestDispatcher(t, ct)

	_, err := dispatchArgs(t, d, "get_repository", map[string]any{"owner": "acme"})
	require.Error(t, err)
	assert.ErrorIs(t, err, mark.ErrBadRequest)

	var missing *MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "repo", missing.Name)
	assert.Zero(t, ct.calls)
}

func TestDispatchUndeclaredArgument(t *testing.T) {
	ct := &countingTransport{}
	d := newTestDispatcher(t, ct)

	_, err := dispatchArgs(t, d, "get_repository", map[string]any{
		"owner":    "acme",
		"repo":     "widgets",
		"sideload": true,
	})
	require.Error(t, err)

	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "sideload", invalid.Name)
	assert.Zero(t, ct.calls)
}

func TestDispatchEnumViolation(t *testing.T) {
	ct := &countingTransport{}
	d := newTestDispatcher(t, ct)

	_, err := dispatchArgs(t, d, "list_issues", map[string]any{
		"owner": "acme",
		"repo":  "widgets",
		"state": "borked",
	})
	require.Error(t, err)

	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "state", invalid.Name)
	assert.Contains(t, invalid.Allowed, "open")
	assert.Contains(t, invalid.Allowed, "closed")
	assert.Zero(t, ct.calls)
}

func TestDispatchBoundsViolation(t *testing.T) {
	ct := &countingTransport{}
	d := newTestDispatcher(t, ct)

	for name, perPage := range map[string]any{
		"above maximum": 200,
		"below minimum": 0,
		"fractional":    1.5,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := dispatchArgs(t, d, "list_issues", map[string]any{
				"owner":    "acme",
				"repo":     "widgets",
				"per_page": perPage,
			})
			require.Error(t, err)

			var invalid *InvalidArgumentError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "per_page", invalid.Name)
		})
	}
	assert.Zero(t, ct.calls)
}

func TestDispatchTypeMismatch(t *testing.T) {
	ct := &countingTransport{}
	d := newTestDispatcher(t, ct)

	_, err := dispatchArgs(t, d, "get_repository", map[string]any{
		"owner": 42,
		"repo":  "widgets",
	})
	require.Error(t, err)

	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "owner", invalid.Name)
	assert.Zero(t, ct.calls)
}

func TestDispatchAppliesListDefaults(t *testing.T) {
	ct := &countingTransport{body: `[]`}
	d := newTestDispatcher(t, ct)

	result, err := dispatchArgs(t, d, "list_issues", map[string]any{
		"owner": "acme",
		"repo":  "widgets",
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	require.Equal(t, 1, ct.calls)
	assert.Equal(t, "/repos/acme/widgets/issues", ct.lastReq.URL.Path)

	q := ct.lastReq.URL.Query()
	assert.Equal(t, "open", q.Get("state"))
	assert.Equal(t, "updated", q.Get("sort"))
	assert.Equal(t, "30", q.Get("per_page"))
}

func TestDispatchSuppliedValuesBeatDefaults(t *testing.T) {
	ct := &countingTransport{body: `[]`}
	d := newTestDispatcher(t, ct)

	_, err := dispatchArgs(t, d, "list_issues", map[string]any{
		"owner": "acme",
		"repo":  "widgets",
		"state": "closed",
	})
	require.NoError(t, err)
	assert.Equal(t, "closed", ct.lastReq.URL.Query().Get("state"))
}

func TestDispatchExpandsFilePathSegments(t *testing.T) {
	ct := &countingTransport{body: `{"type":"file"}`}
	d := newTestDispatcher(t, ct)

	_, err := dispatchArgs(t, d, "get_file_contents", map[string]any{
		"owner": "acme",
		"repo":  "widgets",
		"path":  "docs/guide/intro.md",
		"ref":   "main",
	})
	require.NoError(t, err)
	assert.Equal(t, "/repos/acme/widgets/contents/docs/guide/intro.md", ct.lastReq.URL.Path)
	assert.Equal(t, "main", ct.lastReq.URL.Query().Get("ref"))
}

func TestDispatchBindsBodyArguments(t *testing.T) {
	ct := &countingTransport{status: http.StatusCreated, body: `{"number":7}`}
	d := newTestDispatcher(t, ct)

	result, err := dispatchArgs(t, d, "create_issue", map[string]any{
		"owner":  "acme",
		"repo":   "widgets",
		"title":  "things are broken",
		"labels": []any{"bug", "p1"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	assert.Equal(t, http.MethodPost, ct.lastReq.Method)
	assert.Equal(t, "/repos/acme/widgets/issues", ct.lastReq.URL.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(ct.lastBody, &body))
	assert.Equal(t, "things are broken", body["title"])
	assert.Equal(t, []any{"bug", "p1"}, body["labels"])
	// Path parameters never leak into the request body.
	assert.NotContains(t, body, "owner")
	assert.NotContains(t, body, "repo")
}

func TestDispatchSendsBearerToken(t *testing.T) {
	ct := &countingTransport{body: `{}`}
	d := newTestDispatcher(t, ct)

	_, err := dispatchArgs(t, d, "get_repository", map[string]any{"owner": "acme", "repo": "widgets"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer gho_abc", ct.lastReq.Header.Get(headers.AuthorizationHeader))
}

func TestDispatchSuccessEnvelope(t *testing.T) {
	ct := &countingTransport{body: `{"full_name":"acme/widgets"}`}
	d := newTestDispatcher(t, ct)

	result, err := dispatchArgs(t, d, "get_repository", map[string]any{"owner": "acme", "repo": "widgets"})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.JSONEq(t, `{"full_name":"acme/widgets"}`, result.Content[0].Text)
	assert.False(t, result.IsError)
}

func TestDispatchEmptyBodyBecomesStatusObject(t *testing.T) {
	ct := &countingTransport{status: http.StatusCreated}
	d := newTestDispatcher(t, ct)

	result, err := dispatchArgs(t, d, "rerun_workflow_run", map[string]any{
		"owner":  "acme",
		"repo":   "widgets",
		"run_id": 42,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":201}`, result.Content[0].Text)
	assert.Equal(t, "/repos/acme/widgets/actions/runs/42/rerun", ct.lastReq.URL.Path)
}

func TestDispatchUpstreamFailureIsData(t *testing.T) {
	ct := &countingTransport{status: http.StatusNotFound, body: `{"message":"Not Found"}`}
	d := newTestDispatcher(t, ct)

	result, err := dispatchArgs(t, d, "get_repository", map[string]any{"owner": "acme", "repo": "ghost"})
	require.NoError(t, err, "upstream failures are data, not errors")
	require.True(t, result.IsError)

	var payload struct {
		Error   string `json:"error"`
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
	assert.Equal(t, "not_found", payload.Error)
	assert.Equal(t, http.StatusNotFound, payload.Status)
	assert.Equal(t, "Not Found", payload.Message)
}

func TestDispatchRateLimitedFailurePayload(t *testing.T) {
	reset := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	header := http.Header{}
	header.Set(headers.RateLimitRemainingHeader, "0")
	header.Set(headers.RateLimitResetHeader, strconv.FormatInt(reset.Unix(), 10))

	ct := &countingTransport{
		status: http.StatusForbidden,
		header: header,
		body:   `{"message":"API rate limit exceeded"}`,
	}
	d := newTestDispatcher(t, ct)

	result, err := dispatchArgs(t, d, "get_repository", map[string]any{"owner": "acme", "repo": "widgets"})
	require.NoError(t, err)
	require.True(t, result.IsError)

	var payload struct {
		Error          string `json:"error"`
		RateLimitReset string `json:"rate_limit_reset"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
	assert.Equal(t, "rate_limited", payload.Error)
	assert.Equal(t, reset.UTC().Format(time.RFC3339), payload.RateLimitReset)
}

func TestDispatchUnauthorizedFailureKind(t *testing.T) {
	ct := &countingTransport{status: http.StatusUnauthorized, body: `{"message":"Bad credentials"}`}
	d := newTestDispatcher(t, ct)

	result, err := dispatchArgs(t, d, "get_repository", map[string]any{"owner": "acme", "repo": "widgets"})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, `"error":"unauthorized"`)
}
