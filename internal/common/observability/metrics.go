package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/engine/batch"
	"scholarship-workers/internal/engine/dedup"
)

// Observability implements the engine hooks on top of an OpenTelemetry meter
// exported through the Prometheus registry. Spans are sampled by an SDK
// tracer provider so trace ids reach the logs.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter         otelmetric.Meter
	batchDuration otelmetric.Float64Histogram
	pairsScored   otelmetric.Int64Counter
	pairsExcluded otelmetric.Int64Counter
	duplicates    otelmetric.Int64Counter
	log           logger.Logger
}

var (
	_ batch.Hook = (*Observability)(nil)
	_ dedup.Hook = (*Observability)(nil)
)

func New(serviceName string, log logger.Logger) *Observability {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{tracerProvider: tp, log: log}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	o := &Observability{meterProvider: provider, tracerProvider: tp, meter: meter, log: log}

	o.batchDuration, _ = meter.Float64Histogram(
		"matching.batch.duration",
		otelmetric.WithDescription("Duration of one student's scoring batch"),
		otelmetric.WithUnit("ms"),
	)
	o.pairsScored, _ = meter.Int64Counter(
		"matching.pairs.scored",
		otelmetric.WithDescription("Scholarship pairs scored"),
	)
	o.pairsExcluded, _ = meter.Int64Counter(
		"matching.pairs.excluded",
		otelmetric.WithDescription("Scholarship pairs removed by the eligibility filter"),
	)
	o.duplicates, _ = meter.Int64Counter(
		"import.duplicates",
		otelmetric.WithDescription("Duplicate candidates detected during import"),
	)
	return o
}

// Tracer returns the tracer used around batch scoring.
func (o *Observability) Tracer(name string) trace.Tracer {
	if o.tracerProvider == nil {
		return otel.Tracer(name)
	}
	return o.tracerProvider.Tracer(name)
}

func (o *Observability) BatchScored(ctx context.Context, s batch.Stats) {
	if o.batchDuration != nil {
		o.batchDuration.Record(ctx, float64(s.Duration.Milliseconds()))
	}
	if o.pairsScored != nil {
		o.pairsScored.Add(ctx, int64(s.Scored))
	}
	if o.pairsExcluded != nil {
		o.pairsExcluded.Add(ctx, int64(s.Excluded))
	}
	for tier, n := range s.Tiers {
		metrics.MatchesScored.WithLabelValues(string(tier)).Add(float64(n))
	}
	o.log.Debug("Batch scored", map[string]interface{}{
		"traceId":    trace.SpanContextFromContext(ctx).TraceID().String(),
		"studentId":  s.StudentID,
		"candidates": s.Candidates,
		"scored":     s.Scored,
		"excluded":   s.Excluded,
		"durationMs": s.Duration.Milliseconds(),
	})
}

func (o *Observability) DuplicatesDetected(ctx context.Context, s dedup.Summary) {
	kinds := map[string]int{"exact": s.Exact, "fuzzy": s.Fuzzy, "batch": s.Batch}
	for kind, n := range kinds {
		if n == 0 {
			continue
		}
		metrics.DuplicatesFound.WithLabelValues(kind).Add(float64(n))
		if o.duplicates != nil {
			o.duplicates.Add(ctx, int64(n), otelmetric.WithAttributes(attribute.String("kind", kind)))
		}
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			o.log.Warn("Tracer provider shutdown failed", map[string]interface{}{"error": err})
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			o.log.Warn("Meter provider shutdown failed", map[string]interface{}{"error": err})
		}
	}
}
