package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterInvisibleCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain", input: "Mona Lisa", want: "Mona Lisa"},
		{name: "zero width space", input: "Mona\u200bLisa", want: "MonaLisa"},
		{name: "bidi override", input: "Mona\u202eLisa", want: "MonaLisa"},
		{name: "bidi isolate", input: "\u2066Mona\u2069", want: "Mona"},
		{name: "soft hyphen", input: "Mo\u00adna", want: "Mona"},
		{name: "byte order mark", input: "\ufeffMona", want: "Mona"},
		{name: "unicode tags", input: "Mona\U000E0020\U000E007F", want: "Mona"},
		{name: "preserves non-latin text", input: "モナ・リザ", want: "モナ・リザ"},
		{name: "preserves emoji", input: "Mona 🎨", want: "Mona 🎨"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilterInvisibleCharacters(tc.input))
		})
	}
}
