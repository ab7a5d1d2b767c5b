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

	"github.com/kbukum/inject/logger"
)

// Resolution outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The caller shuts it down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("Meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the injector instruments.
type Metrics struct {
	resolutionTotal    metric.Int64Counter
	resolutionDuration metric.Float64Histogram
	constructionTotal  metric.Int64Counter
	failureTotal       metric.Int64Counter
	contextsActive     metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	resolutionTotal, err := meter.Int64Counter("di.resolution.total",
		metric.WithDescription("Top-level resolutions by request type and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolution.total counter: %w", err)
	}

	resolutionDuration, err := meter.Float64Histogram("di.resolution.duration",
		metric.WithDescription("Duration of top-level resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolution.duration histogram: %w", err)
	}

	constructionTotal, err := meter.Int64Counter("di.construction.total",
		metric.WithDescription("Objects built by the injector, by type and strategy"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.construction.total counter: %w", err)
	}

	failureTotal, err := meter.Int64Counter("di.failure.total",
		metric.WithDescription("Failed resolutions by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.failure.total counter: %w", err)
	}

	contextsActive, err := meter.Int64UpDownCounter("di.context.active",
		metric.WithDescription("Open scope contexts by scope"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.context.active gauge: %w", err)
	}

	return &Metrics{
		resolutionTotal:    resolutionTotal,
		resolutionDuration: resolutionDuration,
		constructionTotal:  constructionTotal,
		failureTotal:       failureTotal,
		contextsActive:     contextsActive,
	}, nil
}

// RecordResolution records a completed top-level resolution.
func (m *Metrics) RecordResolution(ctx context.Context, request, status string, duration time.Duration) {
	m.resolutionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrRequestType, request),
		attribute.String("status", status),
	))
	m.resolutionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrRequestType, request),
	))
}

// RecordConstruction records an object built by a provider.
func (m *Metrics) RecordConstruction(ctx context.Context, typ, strategy string) {
	m.constructionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrRequestType, typ),
		attribute.String(AttrStrategy, strategy),
	))
}

// RecordFailure records a failed resolution by error code.
func (m *Metrics) RecordFailure(ctx context.Context, code string) {
	m.failureTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrErrorCode, code),
	))
}

// ContextOpened records a scope context entering use.
func (m *Metrics) ContextOpened(ctx context.Context, scope string) {
	m.contextsActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrScope, scope)))
}

// ContextClosed records a scope context closing.
func (m *Metrics) ContextClosed(ctx context.Context, scope string) {
	m.contextsActive.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrScope, scope)))
}
