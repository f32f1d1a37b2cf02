// File path: internal/llm/gateway.go
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/common/telemetry"
	"github.com/nicodishanthj/Katral_realty/internal/llm/providers"
)

// ErrEmptyPrompt is returned when Generate is called without a prompt.
var ErrEmptyPrompt = errors.New("llm: empty prompt")

// Request is a single-turn generation. Schema requests structured output
// against a JSON schema; JSON requests a free-form JSON object.
type Request struct {
	Prompt      string
	System      string
	Schema      *Schema
	JSON        bool
	Temperature *float64
}

// Float returns a pointer for Request.Temperature.
func Float(v float64) *float64 {
	return &v
}

// Generator is the contract consumers depend on; *Gateway implements it.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, bool, error)
}

// Gateway wraps a provider with the uniform availability contract: a failed
// call never surfaces as an error, only as ok=false.
type Gateway struct {
	provider    Provider
	timeout     time.Duration
	maxTokens   int
	temperature *float64
}

type Option func(*Gateway)

// WithTimeout bounds every call made through the gateway.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

func WithMaxTokens(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature for requests that do not
// carry their own.
func WithTemperature(t float64) Option {
	return func(g *Gateway) {
		if t >= 0 {
			g.temperature = &t
		}
	}
}

func NewGateway(provider Provider, opts ...Option) *Gateway {
	g := &Gateway{provider: provider}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Provider reports the backend name, for logs and health output.
func (g *Gateway) Provider() string {
	if g == nil || g.provider == nil {
		return "none"
	}
	return g.provider.Name()
}

// Generate performs exactly one provider call. The returned error is
// reserved for misuse; transport, status and empty-content failures come
// back as ("", false, nil).
func (g *Gateway) Generate(ctx context.Context, req Request) (string, bool, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", false, ErrEmptyPrompt
	}
	logger := common.Logger()
	if g == nil || g.provider == nil {
		logger.Error("llm: generation requested without a provider")
		telemetry.RecordGeneration(false, 0)
		return "", false, nil
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temperature := req.Temperature
	if temperature == nil {
		temperature = g.temperature
	}
	start := time.Now()
	text, err := g.provider.Complete(ctx, providers.Completion{
		System:      req.System,
		Prompt:      req.Prompt,
		Schema:      req.Schema,
		JSON:        req.JSON,
		Temperature: temperature,
		MaxTokens:   g.maxTokens,
	})
	elapsed := time.Since(start)
	if err != nil {
		telemetry.RecordGeneration(false, elapsed)
		logger.Warn("llm: generation unavailable", "provider", g.provider.Name(), "duration", elapsed, "error", err)
		return "", false, nil
	}
	telemetry.RecordGeneration(true, elapsed)
	logger.Debug("llm: generation completed", "provider", g.provider.Name(), "duration", elapsed, "chars", len(text))
	return text, true, nil
}
