// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"expvar"
	"strings"
	"sync"
	"time"

	"github.com/nicodishanthj/Katral_realty/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

var (
	initOnce sync.Once

	routerDecisions *expvar.Map
	toolInvocations *expvar.Map

	generationTotal    *expvar.Int
	generationFailures *expvar.Int
	generationLatency  *expvar.Int

	stageLatencyMS *expvar.Map
	stageFallbacks *expvar.Map
)

func ensureInit() {
	initOnce.Do(func() {
		routerDecisions = expvar.NewMap("realty_router_decisions")
		toolInvocations = expvar.NewMap("realty_tool_invocations")

		generationTotal = expvar.NewInt("realty_generation_total")
		generationFailures = expvar.NewInt("realty_generation_failures")
		generationLatency = expvar.NewInt("realty_generation_latency_ms")

		stageLatencyMS = expvar.NewMap("realty_pipeline_stage_ms")
		stageFallbacks = expvar.NewMap("realty_pipeline_stage_fallbacks")
	})
}

// StartSpan logs a debug start/end pair around an operation.
func StartSpan(ctx context.Context, name string) (context.Context, func(attrs ...any)) {
	ensureInit()
	sp := &span{name: name, start: time.Now()}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	logger := common.Logger()
	logger.Debug("trace: start", "span", name)
	return ctx, func(attrs ...any) {
		logger.Debug("trace: end", append([]any{"span", name, "dur", time.Since(sp.start)}, attrs...)...)
	}
}

// SpanDuration reports how long the span stored in ctx has been running.
func SpanDuration(ctx context.Context) time.Duration {
	sp, _ := ctx.Value(spanKey{}).(*span)
	if sp == nil {
		return 0
	}
	return time.Since(sp.start)
}

func RecordRouterDecision(tool string) {
	ensureInit()
	routerDecisions.Add(normalizeKey(tool, "unknown"), 1)
}

func RecordToolInvocation(tool string) {
	ensureInit()
	toolInvocations.Add(normalizeKey(tool, "unknown"), 1)
}

func RecordGeneration(ok bool, duration time.Duration) {
	ensureInit()
	generationTotal.Add(1)
	if !ok {
		generationFailures.Add(1)
	}
	if duration > 0 {
		generationLatency.Add(duration.Milliseconds())
	}
}

func RecordStage(stage string, duration time.Duration, fallback bool) {
	ensureInit()
	key := normalizeKey(stage, "stage")
	if duration > 0 {
		stageLatencyMS.Add(key, duration.Milliseconds())
	}
	if fallback {
		stageFallbacks.Add(key, 1)
	}
}

func normalizeKey(value, fallback string) string {
	key := strings.TrimSpace(strings.ToLower(value))
	if key == "" {
		return fallback
	}
	return key
}
