package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/zatekoja/medtourclinic"

// Metrics holds all application metrics
type Metrics struct {
	RequestCount    metric.Int64Counter
	RequestDuration metric.Float64Histogram
	CacheHitCount   metric.Int64Counter
	CacheMissCount  metric.Int64Counter
	RateLookups     metric.Int64Counter
	RatesSynced     metric.Int64Counter
	LeadsIngested   metric.Int64Counter
	BotReplies      metric.Int64Counter
}

// Setup installs OTLP gRPC trace and metric providers and starts runtime
// instrumentation. The returned func flushes and stops both providers.
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(15 * time.Second)); err != nil {
		_ = tracerProvider.Shutdown(ctx)
		_ = meterProvider.Shutdown(ctx)
		return nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(tracerProvider.Shutdown(ctx), meterProvider.Shutdown(ctx))
	}

	return shutdown, nil
}

// InitMetrics creates the application instruments on the global meter provider
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &Metrics{}
	var err error

	if m.RequestCount, err = meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.CacheHitCount, err = meter.Int64Counter("cache.hit.count",
		metric.WithDescription("Number of cache hits")); err != nil {
		return nil, err
	}
	if m.CacheMissCount, err = meter.Int64Counter("cache.miss.count",
		metric.WithDescription("Number of cache misses")); err != nil {
		return nil, err
	}
	if m.RateLookups, err = meter.Int64Counter("currency.rate.lookups",
		metric.WithDescription("Rate resolutions by outcome")); err != nil {
		return nil, err
	}
	if m.RatesSynced, err = meter.Int64Counter("currency.rates.synced",
		metric.WithDescription("Rates written by the sync job")); err != nil {
		return nil, err
	}
	if m.LeadsIngested, err = meter.Int64Counter("leads.ingested",
		metric.WithDescription("Leads stored by source")); err != nil {
		return nil, err
	}
	if m.BotReplies, err = meter.Int64Counter("chatbot.replies",
		metric.WithDescription("Automatic chatbot replies by response type")); err != nil {
		return nil, err
	}

	return m, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, spanName)
}

// RecordError records an error in the current span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// RecordRequestMetric records an HTTP request
func RecordRequestMetric(ctx context.Context, metrics *Metrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	)
	metrics.RequestCount.Add(ctx, 1, attrs)
	metrics.RequestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordCacheHit records a cache hit for a key family (e.g. "rate")
func RecordCacheHit(ctx context.Context, metrics *Metrics, family string) {
	if metrics == nil {
		return
	}
	metrics.CacheHitCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.family", family)))
}

// RecordCacheMiss records a cache miss for a key family
func RecordCacheMiss(ctx context.Context, metrics *Metrics, family string) {
	if metrics == nil {
		return
	}
	metrics.CacheMissCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.family", family)))
}

// RecordRateLookup records a rate resolution outcome ("identity", "direct", "reverse", "cross", "not_found")
func RecordRateLookup(ctx context.Context, metrics *Metrics, outcome string) {
	if metrics == nil {
		return
	}
	metrics.RateLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRatesSynced records how many rates a sync wrote for a source
func RecordRatesSynced(ctx context.Context, metrics *Metrics, source string, n int) {
	if metrics == nil || n == 0 {
		return
	}
	metrics.RatesSynced.Add(ctx, int64(n), metric.WithAttributes(attribute.String("source", source)))
}

// RecordLeadsIngested records stored leads for a source
func RecordLeadsIngested(ctx context.Context, metrics *Metrics, source string, n int) {
	if metrics == nil || n == 0 {
		return
	}
	metrics.LeadsIngested.Add(ctx, int64(n), metric.WithAttributes(attribute.String("source", source)))
}

// RecordBotReply records an automatic chatbot reply
func RecordBotReply(ctx context.Context, metrics *Metrics, responseType string) {
	if metrics == nil {
		return
	}
	metrics.BotReplies.Add(ctx, 1, metric.WithAttributes(attribute.String("type", responseType)))
}
