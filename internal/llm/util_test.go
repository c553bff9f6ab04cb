package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "json code block", input: "```json\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "generic code block", input: "```\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "code block with language", input: "```javascript\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "plain JSON", input: `{"key": "value"}`, expected: `{"key": "value"}`},
		{name: "preamble", input: "As requested, here is the JSON:\n{\"name\": \"Ada\"}", expected: `{"name": "Ada"}`},
		{name: "trailing text", input: "{\"key\": \"value\"}\n\nLet me know!", expected: `{"key": "value"}`},
		{name: "array", input: "Here are the items:\n[\"a\", \"b\"]", expected: `["a", "b"]`},
		{name: "braces in strings", input: `{"template": "Hello {name}!"}`, expected: `{"template": "Hello {name}!"}`},
		{name: "escaped quotes", input: "Result: {\"m\": \"He said \\\"}\\\"\"}", expected: `{"m": "He said \"}\""}`},
		{name: "deeply nested", input: "Here: {\"a\": {\"b\": {\"c\": \"deep\"}}}", expected: `{"a": {"b": {"c": "deep"}}}`},
		{name: "no json", input: "not json", expected: "not json"},
		{name: "unterminated", input: `{"a": 1`, expected: `{"a": 1`},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "hello", FirstLine("\n  \"hello\"  \nworld"))
	assert.Equal(t, "", FirstLine(" \n\t\n"))
}
