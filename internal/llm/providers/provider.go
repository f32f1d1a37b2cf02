// File path: internal/llm/providers/provider.go
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("empty completion")

// Schema describes a JSON object the completion must conform to.
type Schema struct {
	Name       string
	Properties map[string]any
	Required   []string
}

// Definition renders the schema as a JSON Schema object.
func (s Schema) Definition() map[string]any {
	required := s.Required
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           s.Properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// Instructions is a prose rendering used by backends without native
// structured output.
func (s Schema) Instructions() string {
	raw, err := json.Marshal(s.Definition())
	if err != nil {
		return "Responde únicamente con un objeto JSON válido."
	}
	return fmt.Sprintf("Responde únicamente con un objeto JSON válido que cumpla este JSON Schema:\n%s", raw)
}

// Completion is one single-turn generation request.
type Completion struct {
	System      string
	Prompt      string
	Schema      *Schema
	JSON        bool
	Temperature *float64
	MaxTokens   int
}

// Structured reports whether the caller expects a JSON object back.
func (c Completion) Structured() bool {
	return c.Schema != nil || c.JSON
}

// Provider is a generation backend. Every call is independent.
type Provider interface {
	Complete(ctx context.Context, req Completion) (string, error)
	Name() string
}

func systemWithInstructions(req Completion) string {
	system := strings.TrimSpace(req.System)
	var extra string
	switch {
	case req.Schema != nil:
		extra = req.Schema.Instructions()
	case req.JSON:
		extra = "Responde únicamente con un objeto JSON válido."
	}
	if extra == "" {
		return system
	}
	if system == "" {
		return extra
	}
	return system + "\n\n" + extra
}
