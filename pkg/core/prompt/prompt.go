// Package prompt provides the prompt library for LLM interactions.
// Prompts are defined in YAML files and loaded at runtime, so their wording can
// change without code changes; built-in defaults cover every prompt the
// pipelines use.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

// PromptTemplate represents a reusable prompt with metadata
type PromptTemplate struct {
	ID             string `yaml:"id"`                   // Unique identifier (e.g., "insight.company_performance")
	Name           string `yaml:"name"`                 // Human-readable name
	Category       string `yaml:"category"`             // Category (insight, ...)
	Description    string `yaml:"description"`          // Description of prompt purpose
	SystemPrompt   string `yaml:"system_prompt"`        // The system prompt content
	UserPromptTmpl string `yaml:"user_prompt_template"` // Go template for user prompt
	Version        string `yaml:"version"`              // Version for tracking changes
}

// RenderUserPrompt executes the user prompt template with data.
func RenderUserPrompt(pt *PromptTemplate, data interface{}) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}

	tmpl, err := template.New(pt.ID).Option("missingkey=error").Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
