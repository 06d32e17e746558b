package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/octobridge/octobridge/pkg/catalog"
	"github.com/octobridge/octobridge/pkg/dispatch"
	"github.com/octobridge/octobridge/pkg/ghapi"
	"github.com/octobridge/octobridge/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// stubTransport serves one canned upstream response and counts calls.
type stubTransport struct {
	calls  int
	status int
	body   string
}

func (st *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	st.calls++
	status := st.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(st.body)),
		Request:    req,
	}, nil
}

func newToolRouter(t *testing.T, st *stubTransport) *chi.Mux {
	t.Helper()

	host, err := utils.NewAPIHost("")
	require.NoError(t, err)

	cat := catalog.New()
	api := ghapi.NewClient(host, ghapi.WithHTTPClient(&http.Client{Transport: st}))
	dispatcher, err := dispatch.New(cat, api)
	require.NoError(t, err)

	r := chi.NewRouter()
	NewToolHandler(cat, dispatcher, nil).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, router *chi.Mux, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListToolsRequiresBearer(t *testing.T) {
	router := newToolRouter(t, &stubTransport{})

	rec := doJSON(t, router, "/mcp/tools/list", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListToolsReturnsTheCatalogue(t *testing.T) {
	router := newToolRouter(t, &stubTransport{})

	rec := doJSON(t, router, "/mcp/tools/list", "gho_abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	tools := gjson.Get(rec.Body.String(), "tools")
	require.True(t, tools.IsArray())
	assert.Len(t, tools.Array(), len(catalog.New().Tools()))
	assert.Equal(t, "list_repositories", gjson.Get(rec.Body.String(), "tools.0.name").String())
}

func TestCallToolRequiresBearer(t *testing.T) {
	st := &stubTransport{}
	router := newToolRouter(t, st)

	rec := doJSON(t, router, "/mcp/tools/call", "", `{"name":"get_repository"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, st.calls)
}

func TestCallToolRejectsBadBody(t *testing.T) {
	st := &stubTransport{}
	router := newToolRouter(t, st)

	rec := doJSON(t, router, "/mcp/tools/call", "gho_abc", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, st.calls)
}

func TestCallToolRejectsMissingName(t *testing.T) {
	st := &stubTransport{}
	router := newToolRouter(t, st)

	rec := doJSON(t, router, "/mcp/tools/call", "gho_abc", `{"arguments":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, st.calls)
}

func TestCallToolValidationFailureIs400(t *testing.T) {
	st := &stubTransport{}
	router := newToolRouter(t, st)

	rec := doJSON(t, router, "/mcp/tools/call", "gho_abc", `{"name":"get_repository","arguments":{"owner":"acme"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, gjson.Get(rec.Body.String(), "error").String(), "repo")
	assert.Zero(t, st.calls, "validation failures must not reach upstream")
}

func TestCallToolUnknownToolIs400(t *testing.T) {
	st := &stubTransport{}
	router := newToolRouter(t, st)

	rec := doJSON(t, router, "/mcp/tools/call", "gho_abc", `{"name":"launch_rockets","arguments":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, st.calls)
}

func TestCallToolSuccess(t *testing.T) {
	st := &stubTransport{body: `{"full_name":"acme/widgets"}`}
	router := newToolRouter(t, st)

	rec := doJSON(t, router, "/mcp/tools/call", "gho_abc",
		`{"name":"get_repository","arguments":{"owner":"acme","repo":"widgets"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.False(t, gjson.Get(body, "isError").Bool())
	assert.Equal(t, "text", gjson.Get(body, "content.0.type").String())
	assert.JSONEq(t, `{"full_name":"acme/widgets"}`, gjson.Get(body, "content.0.text").String())
	assert.Equal(t, 1, st.calls)
}

func TestCallToolUpstreamFailureIs200WithErrorEnvelope(t *testing.T) {
	st := &stubTransport{status: http.StatusNotFound, body: `{"message":"Not Found"}`}
	router := newToolRouter(t, st)

	rec := doJSON(t, router, "/mcp/tools/call", "gho_abc",
		`{"name":"get_repository","arguments":{"owner":"acme","repo":"ghost"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, gjson.Get(body, "isError").Bool())
	assert.Equal(t, "not_found", gjson.Get(gjson.Get(body, "content.0.text").String(), "error").String())
}
