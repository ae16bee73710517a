package ruleast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/ruleast/pkg/ruleast/ast"
)

// testLogHandler captures log records for testing.
type testLogHandler struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (h *testLogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	return json.NewEncoder(&h.buf).Encode(data)
}

func (h *testLogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *testLogHandler) WithGroup(string) slog.Handler      { return h }

func (h *testLogHandler) records() []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	var records []map[string]any
	for _, line := range bytes.Split(h.buf.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err == nil {
			records = append(records, m)
		}
	}
	return records
}

func (h *testLogHandler) messages() []string {
	var msgs []string
	for _, r := range h.records() {
		msgs = append(msgs, r["msg"].(string))
	}
	return msgs
}

func TestCreateRule(t *testing.T) {
	tree, err := CreateRule("(age > 30 AND department = 'Sales')")
	require.NoError(t, err)

	j, ok := tree.(*ast.Junction)
	require.True(t, ok, "expected junction, got %T", tree)
	assert.Equal(t, ast.And, j.Conn)
	assert.Equal(t, "age > 30", j.Left.String())
	assert.Equal(t, "department = 'Sales'", j.Right.String())
}

func TestCreateRule_Errors(t *testing.T) {
	_, err := CreateRule("(age > 30")
	assert.ErrorIs(t, err, ErrMalformedRule)

	_, err = CreateRule("age ~ 30")
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.True(t, IsRuleError(err))
}

func TestEvaluate_WorkedExamples(t *testing.T) {
	rule := "(age > 30 AND department = 'Sales')"

	ok, err := Evaluate(rule, Record{"age": 35, "department": "Sales"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Evaluate(rule, Record{"age": 20, "department": "Sales"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Evaluate("age > 30", Record{})
	require.NoError(t, err)
	assert.True(t, ok, "rule with every field absent passes")

	combined, err := CombineRules([]string{"age > 30", "dept = 'Sales'"})
	require.NoError(t, err)
	ok, err = EvaluateTree(combined, Record{"age": 40, "dept": "Marketing"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluate_TypeMismatch(t *testing.T) {
	_, err := Evaluate("age > 30", Record{"age": "old"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.True(t, IsRuleError(err))

	var cmpErr *ast.ComparisonError
	require.ErrorAs(t, err, &cmpErr)
	assert.Equal(t, "age", cmpErr.Field)
}

func TestEvaluateTree_Nil(t *testing.T) {
	_, err := EvaluateTree(nil, Record{})
	assert.ErrorIs(t, err, ErrMalformedRule)
}

func TestCombineRules(t *testing.T) {
	t.Run("single rule equals CreateRule", func(t *testing.T) {
		rule := "(a = 1 OR b = 'x')"
		combined, err := CombineRules([]string{rule})
		require.NoError(t, err)
		created, err := CreateRule(rule)
		require.NoError(t, err)
		assert.Equal(t, created, combined)
	})

	t.Run("left fold", func(t *testing.T) {
		tree, err := CombineRules([]string{"a = 1", "b = 2", "c = 3"})
		require.NoError(t, err)
		assert.Equal(t, "((a = 1 AND b = 2) AND c = 3)", tree.String())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := CombineRules(nil)
		assert.ErrorIs(t, err, ErrNoRules)
		assert.ErrorIs(t, err, ErrMalformedRule)
	})

	t.Run("failing rule is identified", func(t *testing.T) {
		_, err := CombineRules([]string{"a = 1", "b >"})
		var combineErr *CombineError
		require.ErrorAs(t, err, &combineErr)
		assert.Equal(t, 1, combineErr.Index)
		assert.Equal(t, "b >", combineErr.Rule)
		assert.ErrorIs(t, err, ErrMalformedRule)
		assert.Contains(t, err.Error(), "rule 1")
	})
}

func TestManager_CombineTrees(t *testing.T) {
	m := New()
	ctx := context.Background()

	a, err := m.CreateRule(ctx, "a = 1")
	require.NoError(t, err)
	b, err := m.CreateRule(ctx, "b = 2")
	require.NoError(t, err)

	tree, err := m.CombineTrees(ctx, []ast.Node{a, b})
	require.NoError(t, err)
	assert.Equal(t, "(a = 1 AND b = 2)", tree.String())

	_, err = m.CombineTrees(ctx, nil)
	assert.ErrorIs(t, err, ErrNoRules)

	_, err = m.CombineTrees(ctx, []ast.Node{a, nil})
	assert.ErrorIs(t, err, ErrMalformedRule)
}

func TestManager_Cache(t *testing.T) {
	m := New(WithCache(2))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := m.Evaluate(ctx, "age > 30", Record{"age": 40})
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, m.CacheLen())

	_, err := m.Evaluate(ctx, "age >", Record{})
	assert.ErrorIs(t, err, ErrMalformedRule)
	assert.Equal(t, 1, m.CacheLen(), "failed builds are not cached")

	for _, rule := range []string{"a = 1", "b = 2", "c = 3"} {
		_, err := m.Evaluate(ctx, rule, Record{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, m.CacheLen())

	assert.Equal(t, 0, New().CacheLen())
}

func TestManager_Forget(t *testing.T) {
	m := New(WithCache(10))
	ctx := context.Background()

	for _, rule := range []string{"a = 1", "b = 2"} {
		_, err := m.Evaluate(ctx, rule, Record{})
		require.NoError(t, err)
	}
	require.Equal(t, 2, m.CacheLen())

	m.Forget("a = 1")
	assert.Equal(t, 1, m.CacheLen())
	m.Forget("never cached")
	assert.Equal(t, 1, m.CacheLen())

	// Without a cache Forget is a no-op
	New().Forget("a = 1")
}

func TestManager_Logging(t *testing.T) {
	h := &testLogHandler{}
	m := New(WithLogger(slog.New(h)))
	ctx := context.Background()

	_, err := m.CreateRule(ctx, "a = 1")
	require.NoError(t, err)
	_, err = m.CreateRule(ctx, "a =")
	require.Error(t, err)
	_, err = m.Evaluate(ctx, "a = 1", Record{"a": 1})
	require.NoError(t, err)
	_, err = m.CombineRules(ctx, []string{"a = 1", "b = 2"})
	require.NoError(t, err)

	msgs := h.messages()
	assert.Contains(t, msgs, "rule built")
	assert.Contains(t, msgs, "rule rejected")
	assert.Contains(t, msgs, "rule evaluated")
	assert.Contains(t, msgs, "rules combined")

	for _, r := range h.records() {
		if r["msg"] == "rule rejected" {
			assert.Equal(t, "build", r["operation"])
			assert.Equal(t, "a =", r["rule"])
		}
	}
}

func TestManager_Concurrent(t *testing.T) {
	m := New(WithCache(0), WithLogger(slog.New(&testLogHandler{})))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := m.Evaluate(ctx, "(age > 30 AND dept = 'Sales') OR age < 25", Record{"age": i})
			if err != nil {
				errs <- err
				return
			}
			if want := i > 30 || i < 25; ok != want {
				errs <- errors.New("unexpected result")
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, 1, m.CacheLen())
}
