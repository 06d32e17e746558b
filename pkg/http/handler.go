package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/octobridge/octobridge/pkg/authflow"
	"github.com/octobridge/octobridge/pkg/catalog"
	obcontext "github.com/octobridge/octobridge/pkg/context"
	"github.com/octobridge/octobridge/pkg/dispatch"
	"github.com/octobridge/octobridge/pkg/http/headers"
	"github.com/octobridge/octobridge/pkg/http/mark"
	"github.com/octobridge/octobridge/pkg/http/middleware"
)

// ToolHandler serves the token-scoped tool endpoints.
type ToolHandler struct {
	catalog    *catalog.Catalog
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// NewToolHandler creates a ToolHandler.
func NewToolHandler(cat *catalog.Catalog, dispatcher *dispatch.Dispatcher, logger *slog.Logger) *ToolHandler {
	return &ToolHandler{
		catalog:    cat,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterRoutes registers the tool endpoints behind the bearer middleware.
func (h *ToolHandler) RegisterRoutes(r chi.Router) {
	r.Route("/mcp/tools", func(r chi.Router) {
		r.Use(middleware.ExtractUserToken)
		r.Post("/list", h.ListTools)
		r.Post("/call", h.CallTool)
	})
}

// NewRouter assembles the full HTTP surface: OAuth flow plus tool endpoints.
func NewRouter(auth *authflow.Handler, tools *ToolHandler) *chi.Mux {
	r := chi.NewRouter()
	auth.RegisterRoutes(r)
	tools.RegisterRoutes(r)
	return r
}

type listToolsResponse struct {
	Tools []catalog.ToolDescriptor `json:"tools"`
}

// ListTools returns the full catalogue in its stable order.
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, listToolsResponse{Tools: h.catalog.Tools()})
}

type callToolRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CallTool validates and executes one invocation. Validation failures are
// 400s; once the invocation dispatches, upstream failures come back 200
// with isError set in the envelope.
func (h *ToolHandler) CallTool(w http.ResponseWriter, r *http.Request) {
	var req callToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Name == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing tool name"})
		return
	}

	tokenInfo, ok := obcontext.GetTokenInfo(r.Context())
	if !ok || tokenInfo == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), dispatch.Invocation{
		ToolName:  req.Name,
		Arguments: req.Arguments,
		Token:     tokenInfo.Token,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mark.ErrBadRequest) {
			status = http.StatusBadRequest
		}
		h.writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *ToolHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(headers.ContentTypeHeader, headers.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && h.logger != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
