package config

import (
	"fmt"
	"strings"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderLocal     = "local"
)

// Feature names a request surface whose prerequisites can be checked.
type Feature string

const (
	FeatureChat        Feature = "chat"
	FeatureAnalysis    Feature = "analysis"
	FeatureSocial      Feature = "social"
	FeatureValuation   Feature = "valuation"
	FeatureEnvironment Feature = "environment"
)

// Error reports missing credentials or data sources. It is fatal for the
// request that needs them.
type Error struct {
	Feature Feature
	Missing []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration error for %s: missing %s", e.Feature, strings.Join(e.Missing, ", "))
}

// Validate checks the settings a feature cannot run without.
func (c Config) Validate(feature Feature) error {
	var missing []string
	needsGeneration := feature != FeatureValuation
	if needsGeneration {
		switch strings.ToLower(c.LLM.Provider) {
		case ProviderOpenAI, ProviderAnthropic:
			if strings.TrimSpace(c.LLM.APIKey) == "" {
				missing = append(missing, "llm api key")
			}
		case ProviderOllama, ProviderLocal:
		default:
			missing = append(missing, fmt.Sprintf("supported llm provider (got %q)", c.LLM.Provider))
		}
		if strings.TrimSpace(c.LLM.Model) == "" && !strings.EqualFold(c.LLM.Provider, ProviderLocal) {
			missing = append(missing, "llm model")
		}
	}
	switch feature {
	case FeatureChat:
		if strings.TrimSpace(c.Search.TavilyAPIKey) == "" {
			missing = append(missing, "tavily api key")
		}
	case FeatureAnalysis:
		if strings.TrimSpace(c.Data.ListingsPath) == "" && strings.TrimSpace(c.Data.ListingsDSN) == "" {
			missing = append(missing, "listings source")
		}
	case FeatureEnvironment:
		if strings.TrimSpace(c.Maps.APIKey) == "" {
			missing = append(missing, "google maps api key")
		}
	case FeatureValuation:
		if strings.TrimSpace(c.Valuation.Command) == "" {
			missing = append(missing, "valuation command")
		}
		if strings.TrimSpace(c.Valuation.Script) == "" {
			missing = append(missing, "valuation script")
		}
	}
	if len(missing) > 0 {
		return &Error{Feature: feature, Missing: missing}
	}
	return nil
}
