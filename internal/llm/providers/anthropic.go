// File path: internal/llm/providers/anthropic.go
package providers

import (
	"context"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nicodishanthj/Katral_realty/internal/common"
)

const defaultAnthropicMaxTokens = 2048

// AnthropicProvider uses the Messages API. Structured output is requested
// through the system prompt.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

type AnthropicOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
}

func NewAnthropicProvider(opts AnthropicOptions) *AnthropicProvider {
	clientOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(opts.APIKey),
		anthropicopt.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(base))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, anthropicopt.WithHTTPClient(opts.HTTPClient))
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	common.Logger().Info("llm: Anthropic provider configured", "model", opts.Model)
	return &AnthropicProvider{
		client:    anthropic.NewClient(clientOpts...),
		model:     opts.Model,
		maxTokens: maxTokens,
	}
}

func (a *AnthropicProvider) Complete(ctx context.Context, req Completion) (string, error) {
	maxTokens := a.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if system := systemWithInstructions(req); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	common.Logger().Debug("llm: sending messages request", "model", a.model, "structured", req.Structured())
	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

func (a *AnthropicProvider) Name() string {
	return "anthropic"
}
