package dispatch

import (
	"net/http"

	"github.com/yosida95/uritemplate/v3"
)

// route maps one tool to one upstream endpoint. Path parameters are the
// template's variables; query and body list which remaining arguments go
// where; defaults are applied when the argument is absent from the
// invocation. The table is data, not code: adding a tool is a catalogue
// entry plus a row here.
type route struct {
	method   string
	path     *uritemplate.Template
	query    []string
	body     []string
	defaults map[string]any
}

func (r route) pathParams() []string {
	return r.path.Varnames()
}

var listDefaults = map[string]any{
	"state":    "open",
	"sort":     "updated",
	"per_page": 30,
}

var pagingDefaults = map[string]any{
	"per_page": 30,
}

// routeTable is keyed by tool name and covers the full catalogue. Dispatcher
// construction cross-checks it against the catalogue so the two cannot
// drift silently.
var routeTable = map[string]route{
	// Repositories
	"list_repositories": {
		method:   http.MethodGet,
		path:     uritemplate.MustNew("user/repos"),
		query:    []string{"type", "sort", "direction", "per_page", "page"},
		defaults: map[string]any{"type": "owner", "sort": "updated", "per_page": 30},
	},
	"get_repository": {
		method: http.MethodGet,
		path:   uritemplate.MustNew("repos/{owner}/{repo}"),
	},
	"create_repository": {
		method: http.MethodPost,
		path:   uritemplate.MustNew("user/repos"),
		body:   []string{"name", "description", "private", "auto_init"},
	},

	// Issues
	"list_issues": {
		method:   http.MethodGet,
		path:     uritemplate.MustNew("repos/{owner}/{repo}/issues"),
		query:    []string{"state", "labels", "sort", "per_page", "page"},
		defaults: listDefaults,
	},
	"get_issue": {
		method: http.MethodGet,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/issues/{issue_number}"),
	},
	"create_issue": {
		method: http.MethodPost,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/issues"),
		body:   []string{"title", "body", "labels", "assignees"},
	},
	"update_issue": {
		method: http.MethodPatch,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/issues/{issue_number}"),
		body:   []string{"title", "body", "state"},
	},

	// Pull requests
	"list_pull_requests": {
		method:   http.MethodGet,
		path:     uritemplate.MustNew("repos/{owner}/{repo}/pulls"),
		query:    []string{"state", "head", "base", "sort", "per_page", "page"},
		defaults: listDefaults,
	},
	"get_pull_request": {
		method: http.MethodGet,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/pulls/{pull_number}"),
	},
	"create_pull_request": {
		method: http.MethodPost,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/pulls"),
		body:   []string{"title", "head", "base", "body", "draft"},
	},
	"update_pull_request": {
		method: http.MethodPatch,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/pulls/{pull_number}"),
		body:   []string{"title", "body", "state", "base"},
	},
	"merge_pull_request": {
		method:   http.MethodPut,
		path:     uritemplate.MustNew("repos/{owner}/{repo}/pulls/{pull_number}/merge"),
		body:     []string{"commit_title", "commit_message", "merge_method"},
		defaults: map[string]any{"merge_method": "merge"},
	},

	// Branches
	"list_branches": {
		method:   http.MethodGet,
		path:     uritemplate.MustNew("repos/{owner}/{repo}/branches"),
		query:    []string{"protected", "per_page", "page"},
		defaults: pagingDefaults,
	},
	"get_branch": {
		method: http.MethodGet,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/branches/{branch}"),
	},
	"create_branch": {
		method: http.MethodPost,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/git/refs"),
		body:   []string{"ref", "sha"},
	},

	// Commits
	"list_commits": {
		method:   http.MethodGet,
		path:     uritemplate.MustNew("repos/{owner}/{repo}/commits"),
		query:    []string{"sha", "path", "author", "since", "until", "per_page", "page"},
		defaults: pagingDefaults,
	},
	"get_commit": {
		method: http.MethodGet,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/commits/{ref}"),
	},

	// File contents. Reserved expansion keeps slashes in the file path.
	"get_file_contents": {
		method: http.MethodGet,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/contents/{+path}"),
		query:  []string{"ref"},
	},
	"create_or_update_file": {
		method: http.MethodPut,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/contents/{+path}"),
		body:   []string{"message", "content", "sha", "branch"},
	},

	// Workflow runs
	"list_workflow_runs": {
		method:   http.MethodGet,
		path:     uritemplate.MustNew("repos/{owner}/{repo}/actions/runs"),
		query:    []string{"branch", "event", "status", "per_page", "page"},
		defaults: pagingDefaults,
	},
	"get_workflow_run": {
		method: http.MethodGet,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/actions/runs/{run_id}"),
	},
	"rerun_workflow_run": {
		method: http.MethodPost,
		path:   uritemplate.MustNew("repos/{owner}/{repo}/actions/runs/{run_id}/rerun"),
	},
}
