package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// meterName is the instrumentation scope for all engine metrics.
const meterName = "github.com/jonathan/voicedna"

// Metrics holds the OpenTelemetry instruments used by the engine and server.
type Metrics struct {
	// AnalysisDuration tracks feature extraction plus aggregation latency.
	// Use with attribute.String("kind", ...).
	AnalysisDuration metric.Float64Histogram

	// Contributions counts merge attempts by kind and status.
	Contributions metric.Int64Counter

	// CalibrationScore records the score after every successful merge.
	CalibrationScore metric.Int64Histogram

	// PromptsComposed counts composed prompts.
	PromptsComposed metric.Int64Counter

	// Generations counts generation collaborator calls by status.
	Generations metric.Int64Counter

	// HTTPRequestDuration tracks request latency by method, route and status.
	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates every instrument on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnalysisDuration, err = m.Float64Histogram("voicedna.analysis.duration",
		metric.WithDescription("Latency of analyzing and merging one contribution."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Contributions, err = m.Int64Counter("voicedna.contributions",
		metric.WithDescription("Contributions merged into profiles by kind and status."),
	); err != nil {
		return nil, err
	}
	if met.CalibrationScore, err = m.Int64Histogram("voicedna.calibration.score",
		metric.WithDescription("Calibration score after each merge."),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	); err != nil {
		return nil, err
	}
	if met.PromptsComposed, err = m.Int64Counter("voicedna.prompts.composed",
		metric.WithDescription("Generation prompts composed."),
	); err != nil {
		return nil, err
	}
	if met.Generations, err = m.Int64Counter("voicedna.generations",
		metric.WithDescription("Generation collaborator calls by status."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("voicedna.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns metrics bound to the global meter provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observability: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// InitProvider installs a global meter provider backed by the Prometheus
// exporter, so instruments are served by promhttp on /metrics. The returned
// function flushes and shuts the provider down.
func InitProvider() (func(context.Context) error, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// RecordContribution counts one merge attempt.
func (m *Metrics) RecordContribution(ctx context.Context, kind, status string) {
	m.Contributions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordAnalysis records the duration of one analysis by contribution kind.
func (m *Metrics) RecordAnalysis(ctx context.Context, kind string, seconds float64) {
	m.AnalysisDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordGeneration counts one generation call.
func (m *Metrics) RecordGeneration(ctx context.Context, status string) {
	m.Generations.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordHTTPRequest records the latency of one HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, seconds float64) {
	m.HTTPRequestDuration.Record(ctx, seconds,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("route", route),
			attribute.Int("status", status),
		),
	)
}
