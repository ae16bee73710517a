package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records as JSON lines.
type testHandler struct {
	buf   *bytes.Buffer
	level slog.Level
	attrs []slog.Attr
}

func newTestHandler() *testHandler {
	return &testHandler{buf: &bytes.Buffer{}, level: slog.LevelDebug}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &testHandler{buf: h.buf, level: h.level, attrs: merged}
}

func (h *testHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *testHandler) lastRecord() map[string]any {
	lines := bytes.Split(bytes.TrimSpace(h.buf.Bytes()), []byte("\n"))
	if len(lines) == 0 || len(lines[len(lines)-1]) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &m); err != nil {
		return nil
	}
	return m
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds rule_id and rule_name", func(t *testing.T) {
		h := newTestHandler()
		enriched := EnrichLogger(slog.New(h), "id-1", "seniors")
		enriched.Info("test message")

		record := h.lastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "id-1", record["rule_id"])
		assert.Equal(t, "seniors", record["rule_name"])
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "id", "name"))
	})
}

func TestLogRuleBuilt(t *testing.T) {
	h := newTestHandler()
	LogRuleBuilt(slog.New(h), "age > 30", 1, 0.5)

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "rule built", record["msg"])
	assert.Equal(t, "age > 30", record["rule"])
	assert.Equal(t, float64(1), record["fields"])
	assert.Equal(t, 0.5, record["duration_ms"])

	assert.NotPanics(t, func() { LogRuleBuilt(nil, "r", 0, 0) })
}

func TestLogRuleError(t *testing.T) {
	h := newTestHandler()
	LogRuleError(slog.New(h), "build", "(age > 30", errors.New("unclosed"))

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "rule rejected", record["msg"])
	assert.Equal(t, "build", record["operation"])
	assert.Equal(t, "(age > 30", record["rule"])
	assert.Equal(t, "unclosed", record["error"])

	assert.NotPanics(t, func() { LogRuleError(nil, "build", "r", errors.New("x")) })
}

func TestLogEvaluation(t *testing.T) {
	h := newTestHandler()
	LogEvaluation(slog.New(h), "age > 30", true, 1.25)

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "rule evaluated", record["msg"])
	assert.Equal(t, true, record["result"])
	assert.Equal(t, 1.25, record["duration_ms"])

	assert.NotPanics(t, func() { LogEvaluation(nil, "r", false, 0) })
}

func TestLogCombine(t *testing.T) {
	h := newTestHandler()
	LogCombine(slog.New(h), 3, 2)

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "rules combined", record["msg"])
	assert.Equal(t, float64(3), record["rule_count"])

	assert.NotPanics(t, func() { LogCombine(nil, 1, 0) })
}

func TestLogRequest(t *testing.T) {
	t.Run("success at INFO", func(t *testing.T) {
		h := newTestHandler()
		LogRequest(slog.New(h), "POST", "/create_rule", 200, 3)

		record := h.lastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "INFO", record["level"])
		assert.Equal(t, "/create_rule", record["path"])
		assert.Equal(t, float64(200), record["status"])
	})

	t.Run("server error at ERROR", func(t *testing.T) {
		h := newTestHandler()
		LogRequest(slog.New(h), "GET", "/rules", 500, 1)

		record := h.lastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "ERROR", record["level"])
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() { LogRequest(nil, "GET", "/", 200, 0) })
	})
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(10 * time.Millisecond)
	d1 := done()
	assert.GreaterOrEqual(t, d1, 10.0)

	time.Sleep(2 * time.Millisecond)
	assert.Greater(t, done(), d1)
}
