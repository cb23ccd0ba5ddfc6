package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes a JSON extraction task for GenerateJSON.
type ExtractionSchema struct {
	Name        string
	Description string // task preamble placed before the output shape
	Fields      []SchemaField
	// Rules are extra constraints listed after the defaults.
	Rules []string
}

// SchemaField is one top-level key of the expected JSON object.
type SchemaField struct {
	Name        string
	Type        string // type hint shown to the model; defaults to string
	Description string
	Required    bool
}

var defaultExtractionRules = []string{
	"Use only what the input supports. Do not invent preferences.",
	"Return ONLY the JSON object, no markdown, no explanation.",
}

// BuildExtractionPrompt renders the task, the output shape, the rules and the
// quoted input.
func BuildExtractionPrompt(schema ExtractionSchema, input string) string {
	var sb strings.Builder

	if schema.Description != "" {
		sb.WriteString(schema.Description)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Return JSON with exactly this shape:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		fmt.Fprintf(&sb, "  %q: %s", field.Name, typeHint)
		if field.Required {
			sb.WriteString(" (required)")
		}
		if field.Description != "" {
			fmt.Fprintf(&sb, " // %s", field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\nRules:\n")
	for _, rule := range append(append([]string{}, defaultExtractionRules...), schema.Rules...) {
		fmt.Fprintf(&sb, "- %s\n", rule)
	}

	sb.WriteString("\nInput:\n\"\"\"\n")
	sb.WriteString(input)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}
