package telemetry

import (
	"context"
	"expvar"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersArePublished(t *testing.T) {
	RecordRouterDecision("Search_Listings")
	RecordRouterDecision("")
	RecordToolInvocation("search_web")
	RecordGeneration(false, 20*time.Millisecond)
	RecordStage("market_analysis", 5*time.Millisecond, true)

	decisions, ok := expvar.Get("realty_router_decisions").(*expvar.Map)
	require.True(t, ok)
	assert.NotNil(t, decisions.Get("search_listings"))
	assert.NotNil(t, decisions.Get("unknown"))

	failures, ok := expvar.Get("realty_generation_failures").(*expvar.Int)
	require.True(t, ok)
	assert.GreaterOrEqual(t, failures.Value(), int64(1))

	fallbacks := expvar.Get("realty_pipeline_stage_fallbacks").(*expvar.Map)
	assert.NotNil(t, fallbacks.Get("market_analysis"))
}

func TestSpanDuration(t *testing.T) {
	assert.Zero(t, SpanDuration(context.Background()))
	ctx, end := StartSpan(context.Background(), "test.span")
	defer end("ok", true)
	time.Sleep(time.Millisecond)
	assert.Greater(t, SpanDuration(ctx), time.Duration(0))
}
