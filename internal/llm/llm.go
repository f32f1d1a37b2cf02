// File path: internal/llm/llm.go
package llm

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/config"
	"github.com/nicodishanthj/Katral_realty/internal/llm/providers"
)

type Provider = providers.Provider

type Schema = providers.Schema

// NewProvider selects the backend named in cfg. Remote providers without a
// key fall back to the local stub, mirroring development setups.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	logger := common.Logger()
	httpClient := &http.Client{Timeout: cfg.Timeout}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case config.ProviderOpenAI, "":
		if strings.TrimSpace(cfg.APIKey) == "" {
			logger.Warn("llm: no API key configured; falling back to local provider", "provider", config.ProviderOpenAI)
			return providers.NewLocalProvider(), nil
		}
		return providers.NewOpenAIProvider(providers.OpenAIOptions{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.Endpoint(),
			Model:      cfg.Model,
			HTTPClient: httpClient,
		}), nil
	case config.ProviderAnthropic:
		if strings.TrimSpace(cfg.APIKey) == "" {
			logger.Warn("llm: no API key configured; falling back to local provider", "provider", provider)
			return providers.NewLocalProvider(), nil
		}
		return providers.NewAnthropicProvider(providers.AnthropicOptions{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.Endpoint(),
			Model:      cfg.Model,
			MaxTokens:  cfg.MaxTokens,
			HTTPClient: httpClient,
		}), nil
	case config.ProviderOllama:
		return providers.NewOllamaProvider(cfg.Endpoint(), cfg.Model, httpClient)
	case config.ProviderLocal:
		logger.Info("llm: local provider selected")
		return providers.NewLocalProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
