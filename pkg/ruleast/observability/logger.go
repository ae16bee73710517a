// Package observability provides logging, metrics, and tracing for rule
// building and evaluation.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// EnrichLogger adds rule context to a logger.
// Returns a new logger with rule_id and rule_name fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "4f1c...", "senior-sales")
//	enriched.Info("evaluating") // includes rule_id, rule_name
func EnrichLogger(logger *slog.Logger, ruleID, ruleName string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("rule_id", ruleID),
		slog.String("rule_name", ruleName),
	)
}

// LogRuleBuilt logs a successfully built rule.
func LogRuleBuilt(logger *slog.Logger, rule string, fields int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("rule built",
		slog.String("rule", rule),
		slog.Int("fields", fields),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRuleError logs a rule that failed to build or evaluate.
func LogRuleError(logger *slog.Logger, op, rule string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("rule rejected",
		slog.String("operation", op),
		slog.String("rule", rule),
		slog.String("error", err.Error()),
	)
}

// LogEvaluation logs an evaluation result.
func LogEvaluation(logger *slog.Logger, rule string, result bool, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("rule evaluated",
		slog.String("rule", rule),
		slog.Bool("result", result),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCombine logs the combination of several rules.
func LogCombine(logger *slog.Logger, count int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("rules combined",
		slog.Int("rule_count", count),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRequest logs a served HTTP request.
func LogRequest(logger *slog.Logger, method, path string, status int, durationMs float64) {
	if logger == nil {
		return
	}
	level := slog.LevelInfo
	if status >= 500 {
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, "request served",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
