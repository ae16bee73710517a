package ruleast

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/ruleast/pkg/ruleast/ast"
	"github.com/randalmurphal/ruleast/pkg/ruleast/eval"
	"github.com/randalmurphal/ruleast/pkg/ruleast/observability"
	"github.com/randalmurphal/ruleast/pkg/ruleast/parser"
)

// Record is a flat mapping from field name to an integer or string value.
type Record = eval.Record

// Manager builds, evaluates and combines rules with logging, metrics and
// tracing. The zero value is not usable; create one with New.
type Manager struct {
	cfg managerConfig
}

// New creates a Manager.
func New(opts ...Option) *Manager {
	cfg := defaultManagerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager{cfg: cfg}
}

func (m *Manager) logger() *slog.Logger {
	if m.cfg.logger != nil {
		return m.cfg.logger
	}
	return slog.Default()
}

// CreateRule builds rule into a tree. The caller owns the returned tree.
func (m *Manager) CreateRule(ctx context.Context, rule string) (tree ast.Node, err error) {
	ctx, span := m.cfg.spans.StartRuleSpan(ctx, observability.SpanCreate, rule)
	defer func() {
		m.cfg.spans.EndSpanWithError(span, err)
	}()

	return m.build(ctx, rule)
}

// build tokenizes and builds one rule, recording the attempt.
func (m *Manager) build(ctx context.Context, rule string) (ast.Node, error) {
	done := observability.TimedOperation()

	tokens := parser.Tokenize(rule)
	observability.AddSpanEvent(ctx, "tokenized", attribute.Int("tokens", len(tokens)))

	tree, err := parser.BuildTokens(tokens)
	m.cfg.metrics.RecordBuild(ctx, err)
	if err != nil {
		observability.LogRuleError(m.logger(), "build", rule, err)
		return nil, err
	}

	observability.LogRuleBuilt(m.logger(), rule, len(ast.Fields(tree)), done())
	return tree, nil
}

// Evaluate builds rule and evaluates it against record. With WithCache the
// built tree is reused for later calls with the same rule text.
func (m *Manager) Evaluate(ctx context.Context, rule string, record Record) (result bool, err error) {
	ctx, span := m.cfg.spans.StartRuleSpan(ctx, observability.SpanEvaluate, rule)
	defer func() {
		m.cfg.spans.EndSpanWithError(span, err)
	}()

	var tree ast.Node
	if m.cfg.cache != nil {
		tree, err = m.cfg.cache.GetOrBuild(rule, func() (ast.Node, error) {
			return m.build(ctx, rule)
		})
	} else {
		tree, err = m.build(ctx, rule)
	}
	if err != nil {
		return false, err
	}
	return m.evaluate(ctx, rule, tree, record)
}

// EvaluateTree evaluates an already built tree against record.
func (m *Manager) EvaluateTree(ctx context.Context, tree ast.Node, record Record) (result bool, err error) {
	if tree == nil {
		return false, fmt.Errorf("%w: nil tree", ErrMalformedRule)
	}
	text := tree.String()

	ctx, span := m.cfg.spans.StartRuleSpan(ctx, observability.SpanEvaluate, text)
	defer func() {
		m.cfg.spans.EndSpanWithError(span, err)
	}()

	return m.evaluate(ctx, text, tree, record)
}

func (m *Manager) evaluate(ctx context.Context, rule string, tree ast.Node, record Record) (bool, error) {
	start := time.Now()
	result, err := eval.Evaluate(tree, record)
	elapsed := time.Since(start)

	m.cfg.metrics.RecordEvaluation(ctx, result, elapsed, err)
	if err != nil {
		observability.LogRuleError(m.logger(), "evaluate", rule, err)
		return false, err
	}

	observability.LogEvaluation(m.logger(), rule, result, float64(elapsed.Microseconds())/1000)
	return result, nil
}

// CombineRules builds each rule and joins the trees with AND, left to
// right: [a, b, c] becomes ((a AND b) AND c). A single rule yields its own
// tree. An empty slice returns ErrNoRules; a rule that fails to build
// returns a *CombineError naming it.
func (m *Manager) CombineRules(ctx context.Context, rules []string) (tree ast.Node, err error) {
	ctx, span := m.cfg.spans.StartRuleSpan(ctx, observability.SpanCombine, strings.Join(rules, " AND "))
	defer func() {
		m.cfg.spans.EndSpanWithError(span, err)
	}()

	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	done := observability.TimedOperation()
	trees := make([]ast.Node, len(rules))
	for i, rule := range rules {
		t, err := m.build(ctx, rule)
		if err != nil {
			return nil, &CombineError{Index: i, Rule: rule, Err: err}
		}
		trees[i] = t
	}

	tree = parser.Combine(trees...)
	m.cfg.metrics.RecordCombine(ctx, len(trees))
	observability.LogCombine(m.logger(), len(trees), done())
	return tree, nil
}

// CombineTrees joins already built trees with AND, left to right.
// The inputs become children of the result and must not be reused.
func (m *Manager) CombineTrees(ctx context.Context, trees []ast.Node) (tree ast.Node, err error) {
	ctx, span := m.cfg.spans.StartRuleSpan(ctx, observability.SpanCombine, "")
	defer func() {
		m.cfg.spans.EndSpanWithError(span, err)
	}()

	if len(trees) == 0 {
		return nil, ErrNoRules
	}

	done := observability.TimedOperation()
	tree, err = parser.CombineWith(ast.And, trees...)
	if err != nil {
		observability.LogRuleError(m.logger(), "combine", "", err)
		return nil, err
	}

	m.cfg.metrics.RecordCombine(ctx, len(trees))
	observability.LogCombine(m.logger(), len(trees), done())
	return tree, nil
}

// CacheLen returns the number of cached trees, zero without WithCache.
func (m *Manager) CacheLen() int {
	if m.cfg.cache == nil {
		return 0
	}
	return m.cfg.cache.Len()
}

// Forget drops the cached tree for rule, if any. Without WithCache it does
// nothing.
func (m *Manager) Forget(rule string) {
	if m.cfg.cache == nil {
		return
	}
	m.cfg.cache.Delete(rule)
}

var defaultManager = New()

// CreateRule builds rule into a tree using the default Manager.
func CreateRule(rule string) (ast.Node, error) {
	return defaultManager.CreateRule(context.Background(), rule)
}

// Evaluate builds rule and evaluates it against record using the default
// Manager.
func Evaluate(rule string, record Record) (bool, error) {
	return defaultManager.Evaluate(context.Background(), rule, record)
}

// EvaluateTree evaluates a built tree against record using the default
// Manager.
func EvaluateTree(tree ast.Node, record Record) (bool, error) {
	return defaultManager.EvaluateTree(context.Background(), tree, record)
}

// CombineRules builds and ANDs rules using the default Manager.
func CombineRules(rules []string) (ast.Node, error) {
	return defaultManager.CombineRules(context.Background(), rules)
}
