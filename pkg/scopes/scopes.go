// Package scopes handles OAuth scope lists as GitHub represents them:
// comma-separated strings in query parameters, response bodies, and the
// X-OAuth-Scopes header.
package scopes

import "strings"

// ParseScopeList parses a comma-separated scope string into a list.
// Whitespace around entries is dropped, as are empty entries.
// Returns an empty slice for an empty or missing value.
func ParseScopeList(s string) []string {
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	scopes := make([]string, 0, len(parts))
	for _, part := range parts {
		scope := strings.TrimSpace(part)
		if scope != "" {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}

// Join renders a scope list the way GitHub's authorize endpoint accepts it.
func Join(scopes []string) string {
	return strings.Join(scopes, ",")
}

// Normalize removes duplicates while preserving first-seen order.
func Normalize(scopes []string) []string {
	seen := make(map[string]bool, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" || seen[scope] {
			continue
		}
		seen[scope] = true
		out = append(out, scope)
	}
	return out
}
