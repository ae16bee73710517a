package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records rule metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordBuild records a rule build attempt, failed when err is non-nil.
	RecordBuild(ctx context.Context, err error)

	// RecordEvaluation records an evaluation with its duration and outcome.
	RecordEvaluation(ctx context.Context, result bool, duration time.Duration, err error)

	// RecordCombine records a combination of count rules.
	RecordCombine(ctx context.Context, count int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	rulesBuilt    metric.Int64Counter
	ruleErrors    metric.Int64Counter
	evaluations   metric.Int64Counter
	evalLatency   metric.Float64Histogram
	rulesCombined metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("ruleast")

	rulesBuilt, err := meter.Int64Counter("ruleast.rules.built",
		metric.WithDescription("Number of rules built into trees"),
	)
	if err != nil {
		return nil, err
	}

	ruleErrors, err := meter.Int64Counter("ruleast.rules.errors",
		metric.WithDescription("Number of rules rejected while building or evaluating"),
	)
	if err != nil {
		return nil, err
	}

	evaluations, err := meter.Int64Counter("ruleast.evaluations",
		metric.WithDescription("Number of rule evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("ruleast.evaluation.latency_ms",
		metric.WithDescription("Rule evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	rulesCombined, err := meter.Int64Counter("ruleast.rules.combined",
		metric.WithDescription("Number of rules folded into combined trees"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		rulesBuilt:    rulesBuilt,
		ruleErrors:    ruleErrors,
		evaluations:   evaluations,
		evalLatency:   evalLatency,
		rulesCombined: rulesCombined,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordBuild records a rule build.
func (m *otelMetrics) RecordBuild(ctx context.Context, err error) {
	if err != nil {
		m.ruleErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "build")))
		return
	}
	m.rulesBuilt.Add(ctx, 1)
}

// RecordEvaluation records a rule evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, result bool, duration time.Duration, err error) {
	if err != nil {
		m.ruleErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "evaluate")))
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("result", result))
	m.evaluations.Add(ctx, 1, attrs)
	m.evalLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordCombine records a rule combination.
func (m *otelMetrics) RecordCombine(ctx context.Context, count int) {
	m.rulesCombined.Add(ctx, int64(count))
}
