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
		{"json fence", "```json\n{\"insights\": []}\n```", `{"insights": []}`},
		{"bare fence", "```\n{\"insights\": []}\n```", `{"insights": []}`},
		{"other language tag", "```javascript\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"plain", `{"key": "value"}`, `{"key": "value"}`},
		{"preamble", "Here are the insights:\n{\"insights\": [{\"type\": \"vocabulary\"}]}", `{"insights": [{"type": "vocabulary"}]}`},
		{"trailing commentary", "{\"insights\": []}\nLet me know if you need more.", `{"insights": []}`},
		{"array", "Sure:\n[\"a\", \"b\"]", `["a", "b"]`},
		{"no json", "  I could not find any rules.  ", "I could not find any rules."},
		{"unterminated", `{"insights": [`, `{"insights": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", `{"key": "value"}`, `{"key": "value"}`},
		{"nested", `{"outer": {"inner": "value"}}`, `{"outer": {"inner": "value"}}`},
		{"trailing text", `{"key": "value"} and more`, `{"key": "value"}`},
		{"braces in string", `{"insight": "Say {name} less"}`, `{"insight": "Say {name} less"}`},
		{"escaped quote", `{"insight": "Avoid \"synergy}\""}`, `{"insight": "Avoid \"synergy}\""}`},
		{"empty", "", ""},
		{"not an object", "not json", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONObject(tt.input))
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", `["a", "b"]`, `["a", "b"]`},
		{"nested", `[[1, 2], [3]]`, `[[1, 2], [3]]`},
		{"objects", `[{"id": 1}, {"id": 2}] extra`, `[{"id": 1}, {"id": 2}]`},
		{"empty", "", ""},
		{"not an array", "nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONArray(tt.input))
		})
	}
}
