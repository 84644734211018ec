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

	"github.com/kbukum/oswald/logger"
)

// InitMeter initializes the OpenTelemetry meter provider with an OTLP/HTTP
// exporter. The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, cfg *Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.MetricsInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricsInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricsInterval.String(),
	))

	return mp, nil
}

// Meter returns the runtime meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// DispatchMetrics holds the instruments recorded around each dispatch.
type DispatchMetrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

// NewDispatchMetrics creates dispatch instruments on the given meter.
func NewDispatchMetrics(meter metric.Meter) (*DispatchMetrics, error) {
	total, err := meter.Int64Counter("dispatch.total",
		metric.WithDescription("Total number of dispatched requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatch.total counter: %w", err)
	}

	duration, err := meter.Float64Histogram("dispatch.duration",
		metric.WithDescription("Duration of handler resolution and execution in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatch.duration histogram: %w", err)
	}

	active, err := meter.Int64UpDownCounter("dispatch.active",
		metric.WithDescription("Number of requests currently being handled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatch.active gauge: %w", err)
	}

	return &DispatchMetrics{total: total, duration: duration, active: active}, nil
}

// RecordStart increments the active dispatch count.
func (m *DispatchMetrics) RecordStart(ctx context.Context) {
	m.active.Add(ctx, 1)
}

// RecordEnd decrements active dispatches and records the finished one.
func (m *DispatchMetrics) RecordEnd(ctx context.Context, requestType, status string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrRequestType, requestType),
		attribute.String("status", status),
	)
	m.active.Add(ctx, -1)
	m.total.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrRequestType, requestType),
	))
}
