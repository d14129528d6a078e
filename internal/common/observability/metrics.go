// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	evalCounter   otelmetric.Int64Counter
	batchDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	evalCounter, _ := meter.Int64Counter(
		"match.evaluations",
		otelmetric.WithDescription("Number of pair evaluations processed"),
	)

	batchDuration, _ := meter.Float64Histogram(
		"match.batch.duration",
		otelmetric.WithDescription("Batch match duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		evalCounter:   evalCounter,
		batchDuration: batchDuration,
	}
}

func (o *Observability) RecordEvaluation(ctx context.Context, direction, outcome string) {
	if o.evalCounter != nil {
		o.evalCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("direction", direction),
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordBatchDuration(ctx context.Context, direction string, duration time.Duration) {
	if o.batchDuration != nil {
		o.batchDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("direction", direction),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
