// File path: cmd/realty/services.go
package main

import (
	"context"
	"fmt"
	"io"

	"github.com/nicodishanthj/Katral_realty/internal/agent"
	"github.com/nicodishanthj/Katral_realty/internal/api"
	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/config"
	"github.com/nicodishanthj/Katral_realty/internal/environment"
	"github.com/nicodishanthj/Katral_realty/internal/llm"
	"github.com/nicodishanthj/Katral_realty/internal/marketing"
	"github.com/nicodishanthj/Katral_realty/internal/records"
	"github.com/nicodishanthj/Katral_realty/internal/retriever"
	"github.com/nicodishanthj/Katral_realty/internal/router"
	"github.com/nicodishanthj/Katral_realty/internal/valuation"
	"github.com/nicodishanthj/Katral_realty/internal/websearch"
	"github.com/nicodishanthj/Katral_realty/internal/workflow"
)

// components holds everything built from one Config.
type components struct {
	gateway     *llm.Gateway
	runner      *agent.Runner
	pipeline    *workflow.Pipeline
	social      *marketing.Generator
	valuator    *valuation.Valuator
	environment *environment.Reporter
	listings    records.ListingSource
}

func buildComponents(ctx context.Context, cfg config.Config) (*components, error) {
	logger := common.Logger()
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	gateway := llm.NewGateway(provider,
		llm.WithTimeout(cfg.LLM.Timeout),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
		llm.WithTemperature(cfg.LLM.Temperature),
	)
	logger.Info("realty: llm provider ready", "provider", gateway.Provider(), "model", cfg.LLM.Model)

	listings, err := records.NewListingSource(ctx, cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("init listing source: %w", err)
	}
	logger.Info("realty: listing source ready", "source", listings.Describe())
	schema := records.NewSchema(cfg.Data.Columns)

	retr := retriever.New(listings, records.FileDocuments{Path: cfg.Data.DocumentsPath}, retriever.WithSchema(schema))
	web := websearch.NewFromConfig(cfg.Search)
	runner := agent.NewRunner(gateway, router.New(gateway), agent.Tools{
		Listings:  retr.SearchListings,
		Documents: retr.SearchDocuments,
		Web:       web.Search,
	})

	// Without a key the reporter stays unwired and the endpoint reports a
	// configuration error.
	var locator environment.Locator
	if cfg.Maps.APIKey != "" {
		mapsLocator, err := environment.NewMapsLocator(cfg.Maps)
		if err != nil {
			return nil, fmt.Errorf("init maps client: %w", err)
		}
		locator = mapsLocator
	}

	return &components{
		gateway:     gateway,
		runner:      runner,
		pipeline:    workflow.NewPipeline(gateway, listings, workflow.WithSchema(schema)),
		social:      marketing.NewGenerator(gateway),
		valuator:    valuation.New(cfg.Valuation),
		environment: environment.NewReporter(locator, gateway),
		listings:    listings,
	}, nil
}

func (c *components) services() api.Services {
	return api.Services{
		Agent:       c.runner,
		Analyzer:    c.pipeline,
		Social:      c.social,
		Valuator:    c.valuator,
		Environment: c.environment,
	}
}

func (c *components) Close() error {
	if closer, ok := c.listings.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
