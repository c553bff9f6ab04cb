package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{`test\backslash`, `test\textbackslash{}backslash`},
		{"text{with}braces", `text\{with\}braces`},
		{"cost $100 & 50% off", `cost \$100 \& 50\% off`},
		{"C# and x^2", `C\# and x\textasciicircum{}2`},
		{"snake_case ~home", `snake\_case \textasciitilde{}home`},
		{"Café – naïve", "Café – naïve"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLaTeX(tt.input))
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"*bold* and _em_", `\*bold\* and \_em\_`},
		{"[link](x)", `\[link\](x)`},
		{"#1 engineer", `\#1 engineer`},
		{"C# dev", "C# dev"},
		{"<script>", `\<script>`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeMarkdown(tt.input))
		})
	}
}

func TestEscaperFor_TextIsVerbatim(t *testing.T) {
	assert.Equal(t, "a_b & {c}", escaperFor(FormatText)("a_b & {c}"))
}
