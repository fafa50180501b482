package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	serviceName    = "gr24"
	serviceVersion = "1.0.0"
	meterName      = "github.com/Simplici0/gr24"
)

// Config controls the optional OTLP exporter.
type Config struct {
	Endpoint string
	Insecure bool
}

// Metrics records pricing activity.
type Metrics struct {
	rowsComputed metric.Int64Counter
	rowFailures  metric.Int64Counter
	exports      metric.Int64Counter
}

// NewMetrics creates the instruments on the given provider. A nil provider
// uses the global one, which is a no-op until Setup installs an exporter.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)

	rowsComputed, err := meter.Int64Counter(
		"gr24_rows_computed_total",
		metric.WithDescription("Pricing rows computed successfully"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rows computed counter: %w", err)
	}

	rowFailures, err := meter.Int64Counter(
		"gr24_row_failures_total",
		metric.WithDescription("Pricing rows whose inputs did not parse"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating row failures counter: %w", err)
	}

	exports, err := meter.Int64Counter(
		"gr24_exports_total",
		metric.WithDescription("Sheets exported to a file"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exports counter: %w", err)
	}

	return &Metrics{rowsComputed: rowsComputed, rowFailures: rowFailures, exports: exports}, nil
}

// RowComputed records one recompute outcome. source names the front end.
func (m *Metrics) RowComputed(ctx context.Context, source string, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", source))
	if err != nil {
		m.rowFailures.Add(ctx, 1, attrs)
		return
	}
	m.rowsComputed.Add(ctx, 1, attrs)
}

// Exported records a file export in the given format.
func (m *Metrics) Exported(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.exports.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// Setup installs a global meter provider exporting over OTLP gRPC. It returns
// a shutdown function; with no endpoint configured it does nothing.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating resource: %w", err), exp.Shutdown(ctx))
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}
