// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const localPrefix = "[local-stub]"

// LocalProvider answers deterministically without any network access. It is
// used for development and when no API key is configured.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Complete(ctx context.Context, req Completion) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", fmt.Errorf("no prompt provided")
	}
	if req.Schema != nil {
		keys := make([]string, 0, len(req.Schema.Properties))
		for key := range req.Schema.Properties {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := make(map[string]string, len(keys))
		for _, key := range keys {
			out[key] = localPrefix
		}
		raw, err := json.Marshal(out)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	if req.JSON {
		return "{}", nil
	}
	return localPrefix + " " + lastLine(prompt), nil
}

func (l *LocalProvider) Name() string {
	return "local"
}

func lastLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
