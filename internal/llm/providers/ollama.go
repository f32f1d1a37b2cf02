// File path: internal/llm/providers/ollama.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"github.com/nicodishanthj/Katral_realty/internal/common"
)

// OllamaProvider calls a local Ollama server without streaming.
type OllamaProvider struct {
	client *ollama.Client
	model  string
}

func NewOllamaProvider(host, model string, httpClient *http.Client) (*OllamaProvider, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	common.Logger().Info("llm: Ollama provider configured", "model", model, "host", u.String())
	return &OllamaProvider{client: ollama.NewClient(u, httpClient), model: model}, nil
}

func (o *OllamaProvider) Complete(ctx context.Context, req Completion) (string, error) {
	stream := false
	genReq := &ollama.GenerateRequest{
		Model:  o.model,
		Prompt: req.Prompt,
		System: strings.TrimSpace(req.System),
		Stream: &stream,
	}
	switch {
	case req.Schema != nil:
		raw, err := json.Marshal(req.Schema.Definition())
		if err != nil {
			return "", fmt.Errorf("encode schema: %w", err)
		}
		genReq.Format = raw
	case req.JSON:
		genReq.Format = json.RawMessage(`"json"`)
	}
	options := map[string]any{}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if len(options) > 0 {
		genReq.Options = options
	}

	common.Logger().Debug("llm: sending ollama generate request", "model", o.model, "structured", req.Structured())
	var text strings.Builder
	err := o.client.Generate(ctx, genReq, func(resp ollama.GenerateResponse) error {
		text.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}

func (o *OllamaProvider) Name() string {
	return "ollama"
}
