package catalog

import "github.com/google/jsonschema-go/jsonschema"

// Pagination bounds mirror the REST API's.
const (
	MaxPerPage     = 100
	DefaultPerPage = 30
)

func ownerSchema() *jsonschema.Schema {
	return stringSchema("Repository owner (user or organization). The name is not case sensitive.")
}

func repoSchema() *jsonschema.Schema {
	return stringSchema("Repository name without the .git extension. The name is not case sensitive.")
}

func perPageSchema() *jsonschema.Schema {
	return withDefault(boundedIntSchema("Results per page (max 100)", 1, MaxPerPage), DefaultPerPage)
}

func pageSchema() *jsonschema.Schema {
	min := 1.0
	s := intSchema("Page number of the results to fetch")
	s.Minimum = &min
	return withDefault(s, 1)
}

// defaultTools returns the full catalogue in its stable order:
// repositories, issues, pull requests, branches, commits, file contents,
// workflow runs.
func defaultTools() []ToolDescriptor {
	return []ToolDescriptor{
		// Repositories
		{
			Name:        "list_repositories",
			Description: "List repositories for the authenticated user",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"type":      withDefault(enumSchema("Limit results to repositories of this type", "all", "owner", "public", "private", "member"), "owner"),
				"sort":      withDefault(enumSchema("Property to sort the results by", "created", "updated", "pushed", "full_name"), "updated"),
				"direction": enumSchema("Order of the results", "asc", "desc"),
				"per_page":  perPageSchema(),
				"page":      pageSchema(),
			}),
		},
		{
			Name:        "get_repository",
			Description: "Get details of a single repository",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner": ownerSchema(),
				"repo":  repoSchema(),
			}, "owner", "repo"),
		},
		{
			Name:        "create_repository",
			Description: "Create a new repository for the authenticated user",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"name":        stringSchema("Name of the repository"),
				"description": stringSchema("Short description of the repository"),
				"private":     boolSchema("Whether the repository is private"),
				"auto_init":   boolSchema("Create an initial commit with an empty README"),
			}, "name"),
		},

		// Issues
		{
			Name:        "list_issues",
			Description: "List issues in a repository",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":    ownerSchema(),
				"repo":     repoSchema(),
				"state":    withDefault(enumSchema("Filter by issue state", "open", "closed", "all"), "open"),
				"labels":   stringSchema("Comma-separated list of label names to filter by"),
				"sort":     withDefault(enumSchema("Property to sort the results by", "created", "updated", "comments"), "updated"),
				"per_page": perPageSchema(),
				"page":     pageSchema(),
			}, "owner", "repo"),
		},
		{
			Name:        "get_issue",
			Description: "Get details of a single issue",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":        ownerSchema(),
				"repo":         repoSchema(),
				"issue_number": intSchema("The number that identifies the issue"),
			}, "owner", "repo", "issue_number"),
		},
		{
			Name:        "create_issue",
			Description: "Create a new issue in a repository",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":     ownerSchema(),
				"repo":      repoSchema(),
				"title":     stringSchema("Title of the issue"),
				"body":      stringSchema("Body text of the issue"),
				"labels":    stringArraySchema("Labels to associate with the issue"),
				"assignees": stringArraySchema("Logins of users to assign to the issue"),
			}, "owner", "repo", "title"),
		},
		{
			Name:        "update_issue",
			Description: "Update an existing issue's title, body, or state",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":        ownerSchema(),
				"repo":         repoSchema(),
				"issue_number": intSchema("The number that identifies the issue"),
				"title":        stringSchema("New title for the issue"),
				"body":         stringSchema("New body text for the issue"),
				"state":        enumSchema("New state for the issue", "open", "closed"),
			}, "owner", "repo", "issue_number"),
		},

		// Pull requests
		{
			Name:        "list_pull_requests",
			Description: "List pull requests in a repository",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":    ownerSchema(),
				"repo":     repoSchema(),
				"state":    withDefault(enumSchema("Filter by pull request state", "open", "closed", "all"), "open"),
				"head":     stringSchema("Filter by head user or branch, in the format user:ref-name"),
				"base":     stringSchema("Filter by base branch name"),
				"sort":     withDefault(enumSchema("Property to sort the results by", "created", "updated", "popularity", "long-running"), "updated"),
				"per_page": perPageSchema(),
				"page":     pageSchema(),
			}, "owner", "repo"),
		},
		{
			Name:        "get_pull_request",
			Description: "Get details of a single pull request",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":       ownerSchema(),
				"repo":        repoSchema(),
				"pull_number": intSchema("The number that identifies the pull request"),
			}, "owner", "repo", "pull_number"),
		},
		{
			Name:        "create_pull_request",
			Description: "Open a new pull request",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner": ownerSchema(),
				"repo":  repoSchema(),
				"title": stringSchema("Title of the pull request"),
				"head":  stringSchema("Name of the branch where the changes are implemented"),
				"base":  stringSchema("Name of the branch the changes should be pulled into"),
				"body":  stringSchema("Body text of the pull request"),
				"draft": boolSchema("Open the pull request as a draft"),
			}, "owner", "repo", "title", "head", "base"),
		},
		{
			Name:        "update_pull_request",
			Description: "Update an existing pull request's title, body, state, or base branch",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":       ownerSchema(),
				"repo":        repoSchema(),
				"pull_number": intSchema("The number that identifies the pull request"),
				"title":       stringSchema("New title for the pull request"),
				"body":        stringSchema("New body text for the pull request"),
				"state":       enumSchema("New state for the pull request", "open", "closed"),
				"base":        stringSchema("Name of the branch the changes should be pulled into"),
			}, "owner", "repo", "pull_number"),
		},
		{
			Name:        "merge_pull_request",
			Description: "Merge a pull request",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":          ownerSchema(),
				"repo":           repoSchema(),
				"pull_number":    intSchema("The number that identifies the pull request"),
				"commit_title":   stringSchema("Title for the merge commit"),
				"commit_message": stringSchema("Extra detail to append to the merge commit message"),
				"merge_method":   withDefault(enumSchema("Merge method to use", "merge", "squash", "rebase"), "merge"),
			}, "owner", "repo", "pull_number"),
		},

		// Branches
		{
			Name:        "list_branches",
			Description: "List branches in a repository",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":     ownerSchema(),
				"repo":      repoSchema(),
				"protected": boolSchema("Only return branches with protection enabled"),
				"per_page":  perPageSchema(),
				"page":      pageSchema(),
			}, "owner", "repo"),
		},
		{
			Name:        "get_branch",
			Description: "Get details of a single branch",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":  ownerSchema(),
				"repo":   repoSchema(),
				"branch": stringSchema("Branch name"),
			}, "owner", "repo", "branch"),
		},
		{
			Name:        "create_branch",
			Description: "Create a new branch ref pointing at a commit",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner": ownerSchema(),
				"repo":  repoSchema(),
				"ref":   stringSchema("Fully qualified ref to create, e.g. refs/heads/feature-a"),
				"sha":   stringSchema("SHA1 of the commit the new ref points to"),
			}, "owner", "repo", "ref", "sha"),
		},

		// Commits
		{
			Name:        "list_commits",
			Description: "List commits in a repository",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":    ownerSchema(),
				"repo":     repoSchema(),
				"sha":      stringSchema("SHA or branch to start listing commits from"),
				"path":     stringSchema("Only commits containing this file path are returned"),
				"author":   stringSchema("GitHub username or email address to filter by commit author"),
				"since":    stringSchema("Only show results after this timestamp (ISO 8601)"),
				"until":    stringSchema("Only show results before this timestamp (ISO 8601)"),
				"per_page": perPageSchema(),
				"page":     pageSchema(),
			}, "owner", "repo"),
		},
		{
			Name:        "get_commit",
			Description: "Get details of a single commit",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner": ownerSchema(),
				"repo":  repoSchema(),
				"ref":   stringSchema("Commit SHA, branch name, or tag name"),
			}, "owner", "repo", "ref"),
		},

		// File contents
		{
			Name:        "get_file_contents",
			Description: "Get the contents of a file or directory",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner": ownerSchema(),
				"repo":  repoSchema(),
				"path":  stringSchema("Path to the file or directory"),
				"ref":   stringSchema("Name of the commit, branch, or tag to read from"),
			}, "owner", "repo", "path"),
		},
		{
			Name:        "create_or_update_file",
			Description: "Create a new file or replace an existing one",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":   ownerSchema(),
				"repo":    repoSchema(),
				"path":    stringSchema("Path to the file"),
				"message": stringSchema("Commit message"),
				"content": stringSchema("New file content, Base64 encoded"),
				"sha":     stringSchema("Blob SHA of the file being replaced; required when updating"),
				"branch":  stringSchema("Branch to commit to; defaults to the repository's default branch"),
			}, "owner", "repo", "path", "message", "content"),
		},

		// Workflow runs
		{
			Name:        "list_workflow_runs",
			Description: "List workflow runs in a repository",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":    ownerSchema(),
				"repo":     repoSchema(),
				"branch":   stringSchema("Only return runs associated with this branch"),
				"event":    stringSchema("Only return runs triggered by this event, e.g. push"),
				"status":   enumSchema("Only return runs with this status", "queued", "in_progress", "completed"),
				"per_page": perPageSchema(),
				"page":     pageSchema(),
			}, "owner", "repo"),
		},
		{
			Name:        "get_workflow_run",
			Description: "Get details of a single workflow run",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":  ownerSchema(),
				"repo":   repoSchema(),
				"run_id": intSchema("The unique identifier of the workflow run"),
			}, "owner", "repo", "run_id"),
		},
		{
			Name:        "rerun_workflow_run",
			Description: "Re-run a workflow run",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"owner":  ownerSchema(),
				"repo":   repoSchema(),
				"run_id": intSchema("The unique identifier of the workflow run"),
			}, "owner", "repo", "run_id"),
		},
	}
}
