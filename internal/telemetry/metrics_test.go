package telemetry

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := NewMetrics(provider)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	m.RowComputed(ctx, "web", nil)
	m.RowComputed(ctx, "web", nil)
	m.RowComputed(ctx, "web", errors.New("bad input"))
	m.Exported(ctx, "xlsx")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[md.Name] += dp.Value
			}
		}
	}

	if totals["gr24_rows_computed_total"] != 2 {
		t.Fatalf("rows computed = %d, want 2", totals["gr24_rows_computed_total"])
	}
	if totals["gr24_row_failures_total"] != 1 {
		t.Fatalf("row failures = %d, want 1", totals["gr24_row_failures_total"])
	}
	if totals["gr24_exports_total"] != 1 {
		t.Fatalf("exports = %d, want 1", totals["gr24_exports_total"])
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.RowComputed(context.Background(), "cli", nil)
	m.Exported(context.Background(), "csv")
}

func TestSetup_WithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
