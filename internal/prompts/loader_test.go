package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	set, err := Load(ProfileFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"extraction-rules", "resume-parser", "tagline"}, set.Keys())

	parser, err := set.Get("resume-parser")
	require.NoError(t, err)
	assert.Contains(t, parser, "resume parser")

	_, err = set.Get("no-such-key")
	assert.ErrorContains(t, err, `no prompt "no-such-key"`)

	again, err := Load(ProfileFile)
	require.NoError(t, err)
	assert.Equal(t, set, again)

	_, err = Load("nonexistent.json")
	assert.ErrorContains(t, err, "prompt file nonexistent.json")
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { Must(ProfileFile, "tagline") })
	assert.Panics(t, func() { Must(ProfileFile, "no-such-key") })
	assert.Panics(t, func() { Must("missing.json", "tagline") })
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		vars map[string]string
		want string
	}{
		{name: "single", tmpl: "Hello {{.Name}}", vars: map[string]string{"Name": "Ada"}, want: "Hello Ada"},
		{name: "repeated", tmpl: "{{.A}} and {{.A}}", vars: map[string]string{"A": "x"}, want: "x and x"},
		{name: "missing value kept", tmpl: "{{.A}} {{.B}}", vars: map[string]string{"A": "x"}, want: "x {{.B}}"},
		{name: "no re-expansion", tmpl: "{{.A}}", vars: map[string]string{"A": "{{.B}}", "B": "y"}, want: "{{.B}}"},
		{name: "no vars", tmpl: "plain", want: "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.tmpl, tt.vars))
		})
	}
}

func TestTaglinePlaceholders(t *testing.T) {
	tagline := Must(ProfileFile, "tagline")
	assert.Contains(t, tagline, "{{.MaxChars}}")
	assert.Contains(t, tagline, "{{.Profile}}")
}
