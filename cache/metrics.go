package cache

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/bpowers/msview/cache"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)
)

var (
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	cacheComputes  metric.Int64Counter
	cacheErrors    metric.Int64Counter
	cacheEvictions metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments on first use.
func initMetrics() error {
	metricsOnce.Do(func() {
		counters := []struct {
			dst  *metric.Int64Counter
			name string
			desc string
		}{
			{&cacheHits, "msview_cache_hits_total", "Requests served from a stored view"},
			{&cacheMisses, "msview_cache_misses_total", "Requests that found no stored view"},
			{&cacheComputes, "msview_cache_computes_total", "View computations started"},
			{&cacheErrors, "msview_cache_errors_total", "View computations that failed"},
			{&cacheEvictions, "msview_cache_evictions_total", "Stored views evicted to make room"},
		}
		for _, c := range counters {
			counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
			if err != nil {
				metricsErr = err
				return
			}
			*c.dst = counter
		}
	})
	return metricsErr
}

func add(ctx context.Context, counter *metric.Int64Counter, cache string) {
	if err := initMetrics(); err != nil {
		return
	}
	(*counter).Add(ctx, 1, metric.WithAttributes(attribute.String("cache", cache)))
}

func recordHit(ctx context.Context, cache string)      { add(ctx, &cacheHits, cache) }
func recordMiss(ctx context.Context, cache string)     { add(ctx, &cacheMisses, cache) }
func recordCompute(ctx context.Context, cache string)  { add(ctx, &cacheComputes, cache) }
func recordError(ctx context.Context, cache string)    { add(ctx, &cacheErrors, cache) }
func recordEviction(ctx context.Context, cache string) { add(ctx, &cacheEvictions, cache) }

// startComputeSpan starts the span covering one view computation.
func startComputeSpan(ctx context.Context, cache, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Cache.compute",
		trace.WithAttributes(
			attribute.String("cache.name", cache),
			attribute.String("cache.key", key),
		),
	)
}

func setSpanResult(span trace.Span, stored bool) {
	span.SetAttributes(attribute.Bool("cache.stored", stored))
}

func setSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
