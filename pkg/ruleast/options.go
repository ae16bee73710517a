package ruleast

import (
	"log/slog"

	"github.com/randalmurphal/ruleast/pkg/ruleast/ast"
	"github.com/randalmurphal/ruleast/pkg/ruleast/observability"
	"github.com/randalmurphal/ruleast/pkg/ruleast/registry"
)

// managerConfig holds Manager configuration.
type managerConfig struct {
	logger         *slog.Logger
	metricsEnabled bool
	metrics        observability.MetricsRecorder
	tracingEnabled bool
	spans          observability.SpanManager
	cache          *registry.Registry[string, ast.Node]
}

// defaultManagerConfig returns the default configuration: slog.Default(),
// no metrics, no tracing, no cache.
func defaultManagerConfig() managerConfig {
	return managerConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Manager.
type Option func(*managerConfig)

// WithLogger sets the logger. A nil logger means slog.Default() at call time.
//
// Example:
//
//	m := ruleast.New(ruleast.WithLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil))))
func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) {
		c.logger = logger
	}
}

// WithMetrics enables or disables OpenTelemetry metrics.
// Default: false
//
// Metrics use the global meter provider; set it with otel.SetMeterProvider
// before creating the Manager.
func WithMetrics(enabled bool) Option {
	return func(c *managerConfig) {
		c.metricsEnabled = enabled
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables or disables OpenTelemetry tracing.
// Default: false
func WithTracing(enabled bool) Option {
	return func(c *managerConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithCache keeps built trees keyed by rule text so Evaluate builds each
// distinct rule once. A size of zero or less means unbounded.
func WithCache(size int) Option {
	return func(c *managerConfig) {
		c.cache = registry.NewBounded[string, ast.Node](size)
	}
}
