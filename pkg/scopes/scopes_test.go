package scopes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScopeList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: "", want: []string{}},
		{input: "repo", want: []string{"repo"}},
		{input: "repo,read:user", want: []string{"repo", "read:user"}},
		{input: " repo , read:user ", want: []string{"repo", "read:user"}},
		{input: "repo,,read:user,", want: []string{"repo", "read:user"}},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseScopeList(tc.input), "input %q", tc.input)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "repo,read:user", Join([]string{"repo", "read:user"}))
	assert.Equal(t, "", Join(nil))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"repo", "read:user"}, Normalize([]string{"repo", "repo", "read:user"}))
	assert.Equal(t, []string{"repo"}, Normalize([]string{" repo ", "repo", ""}))
	assert.Empty(t, Normalize(nil))
}
