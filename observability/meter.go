package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// InitMeter installs a periodic OTLP metric exporter as the global provider.
func InitMeter(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns a meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the pipeline instruments.
type Metrics struct {
	stageTotal    metric.Int64Counter
	stageDuration metric.Float64Histogram
	errorTotal    metric.Int64Counter
	segments      metric.Int64Histogram
	outcomes      metric.Int64Counter
	sessions      metric.Int64UpDownCounter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error
	if m.stageTotal, err = meter.Int64Counter("linguacast.stage.calls",
		metric.WithDescription("Stage provider calls")); err != nil {
		return nil, fmt.Errorf("creating stage.calls: %w", err)
	}
	if m.stageDuration, err = meter.Float64Histogram("linguacast.stage.duration",
		metric.WithDescription("Stage provider latency"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating stage.duration: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("linguacast.errors",
		metric.WithDescription("Errors by component and kind")); err != nil {
		return nil, fmt.Errorf("creating errors: %w", err)
	}
	if m.segments, err = meter.Int64Histogram("linguacast.pipeline.segments",
		metric.WithDescription("Speaker segments per utterance")); err != nil {
		return nil, fmt.Errorf("creating pipeline.segments: %w", err)
	}
	if m.outcomes, err = meter.Int64Counter("linguacast.pipeline.outcomes",
		metric.WithDescription("Pipeline runs by outcome")); err != nil {
		return nil, fmt.Errorf("creating pipeline.outcomes: %w", err)
	}
	if m.sessions, err = meter.Int64UpDownCounter("linguacast.sessions.active",
		metric.WithDescription("Open websocket sessions")); err != nil {
		return nil, fmt.Errorf("creating sessions.active: %w", err)
	}
	return &m, nil
}

// RecordStage records one provider call.
func (m *Metrics) RecordStage(ctx context.Context, provider, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
	m.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("provider", provider)))
}

func (m *Metrics) RecordError(ctx context.Context, component, kind string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("kind", kind),
	))
}

// RecordPipeline records the segment count and outcome of one run.
func (m *Metrics) RecordPipeline(ctx context.Context, segments int, outcome string) {
	if m == nil {
		return
	}
	m.segments.Record(ctx, int64(segments))
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// SessionOpened and SessionClosed track live websocket sessions.
func (m *Metrics) SessionOpened(ctx context.Context) {
	if m != nil {
		m.sessions.Add(ctx, 1)
	}
}

func (m *Metrics) SessionClosed(ctx context.Context) {
	if m != nil {
		m.sessions.Add(ctx, -1)
	}
}
