// File path: internal/workflow/pipeline.go
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/common/telemetry"
	"github.com/nicodishanthj/Katral_realty/internal/comparables"
	"github.com/nicodishanthj/Katral_realty/internal/llm"
	"github.com/nicodishanthj/Katral_realty/internal/records"
)

// Report is the four-part strategic analysis of a property.
type Report struct {
	MarketAnalysis   string `json:"market_analysis"`
	SWOTAnalysis     string `json:"swot_analysis"`
	BuyerPersona     string `json:"buyer_persona"`
	MarketingContent string `json:"marketing_content"`
}

// Pipeline runs the four chained stages. Each stage sees the target and
// every earlier stage's output, whether generated or fallback.
type Pipeline struct {
	gen      llm.Generator
	listings records.ListingSource
	schema   records.Schema
}

type Option func(*Pipeline)

func WithSchema(schema records.Schema) Option {
	return func(p *Pipeline) {
		p.schema = schema
	}
}

func NewPipeline(gen llm.Generator, listings records.ListingSource, opts ...Option) *Pipeline {
	p := &Pipeline{gen: gen, listings: listings, schema: records.DefaultSchema()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Analyze returns an error only for an invalid target or a cancelled
// context; every other failure degrades to fixed text.
func (p *Pipeline) Analyze(ctx context.Context, target comparables.Target) (Report, error) {
	if err := target.Validate(); err != nil {
		return Report{}, err
	}
	ctx, end := telemetry.StartSpan(ctx, "workflow.analyze")
	defer end()

	vars := map[string]any{
		"type":        target.Type,
		"location":    target.Location,
		"area":        target.AreaText(),
		"rooms":       target.Rooms,
		"baths":       target.Baths,
		"state":       target.State,
		"features":    target.Features,
		"comparables": p.comparablesText(ctx, target),
	}

	var acc Context
	for _, stage := range Stages {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		vars["market"] = acc.Text(StageMarket)
		vars["swot"] = acc.Text(StageSWOT)
		vars["persona"] = acc.Text(StagePersona)
		text, err := p.runStage(ctx, stage, vars)
		if err != nil {
			return Report{}, err
		}
		acc = acc.With(stage, text)
	}

	return Report{
		MarketAnalysis:   strings.TrimSpace(acc.Text(StageMarket)),
		SWOTAnalysis:     strings.TrimSpace(acc.Text(StageSWOT)),
		BuyerPersona:     strings.TrimSpace(acc.Text(StagePersona)),
		MarketingContent: strings.TrimSpace(acc.Text(StageMarketing)),
	}, nil
}

func (p *Pipeline) comparablesText(ctx context.Context, target comparables.Target) string {
	if p.listings == nil {
		return comparables.NoneFound
	}
	listings, err := p.listings.Listings(ctx)
	if err != nil {
		common.Logger().Warn("workflow: comparables source unavailable", "source", p.listings.Describe(), "error", err)
		return comparables.NoneFound
	}
	set := comparables.Find(target, listings, p.schema)
	common.Logger().Debug("workflow: comparables selected", "candidates", len(listings), "selected", len(set))
	return comparables.Render(set, p.schema)
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, vars map[string]any) (string, error) {
	logger := common.Logger()
	prompt, err := stagePrompts[stage].Format(vars)
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", stage, err)
	}
	ctx, end := telemetry.StartSpan(ctx, "workflow."+string(stage))
	text, ok, err := p.gen.Generate(ctx, llm.Request{
		Prompt:      prompt,
		JSON:        stage == StageMarketing,
		Temperature: llm.Float(stageTemperature),
	})
	if err != nil {
		end("error", err)
		return "", fmt.Errorf("generate %s: %w", stage, err)
	}
	fallback := !ok
	if !ok {
		text = stageFallbacks[stage]
	} else if stage == StageMarketing {
		text = formatMarketing(text)
	}
	telemetry.RecordStage(string(stage), telemetry.SpanDuration(ctx), fallback)
	end("fallback", fallback)
	logger.Info("workflow: stage finished", "stage", stage, "fallback", fallback, "chars", len(text))
	return text, nil
}

// formatMarketing turns the stage-four JSON object into the three labelled
// platform sections.
func formatMarketing(raw string) string {
	var decoded map[string]any
	err := llm.DecodeObject(raw, &decoded)
	var decodeErr *llm.DecodeError
	switch {
	case errors.Is(err, llm.ErrNoObject):
		common.Logger().Warn("workflow: marketing response has no JSON object")
		return marketingNoObject
	case errors.As(err, &decodeErr):
		common.Logger().Warn("workflow: marketing JSON invalid", "span", decodeErr.Span, "error", decodeErr.Err)
		return marketingInvalidJSON
	case err != nil:
		return marketingInvalidJSON
	}
	return "**Facebook:**\n" + platformText(decoded, "facebook") +
		"\n\n**Instagram:**\n" + platformText(decoded, "instagram") +
		"\n\n**Portales Inmobiliarios:**\n" + platformText(decoded, "portales")
}

func platformText(decoded map[string]any, key string) string {
	value, ok := decoded[key]
	if !ok || value == nil {
		return marketingMissingKey
	}
	switch v := value.(type) {
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return marketingMissingKey
		}
		return string(raw)
	}
}
